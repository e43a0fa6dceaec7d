package main

import "github.com/djangoguard/djangoguard/cmd"

func main() {
	cmd.Execute()
}
