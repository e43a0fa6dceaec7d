package model

import "sync"

// Run accumulates findings over one invocation. Scanners append concurrently;
// the report engine reads it once all scanners have finished. A Run is never
// persisted or reused.
type Run struct {
	mu       sync.Mutex
	findings []Finding
	scanners map[string]bool
}

func NewRun() *Run {
	return &Run{scanners: make(map[string]bool)}
}

// Add appends findings in discovery order.
func (r *Run) Add(fs ...Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, fs...)
}

// MarkScanner records that the named scanner executed, whether or not it
// produced findings.
func (r *Run) MarkScanner(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanners[name] = true
}

// Ran reports whether the named scanner executed.
func (r *Run) Ran(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scanners[name]
}

// Findings returns a copy of the accumulated findings in discovery order.
func (r *Run) Findings() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Len returns the number of findings so far.
func (r *Run) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.findings)
}
