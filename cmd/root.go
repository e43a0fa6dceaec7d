package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "djangoguard",
	Short: "djangoguard - static security auditor for Django projects",
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
