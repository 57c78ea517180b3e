package model

import "time"

// Run statuses recorded in the journal.
const (
	RunOK      = "ok"
	RunInvalid = "invalid"
	RunFailed  = "failed"
)

// RunEntry captures one generation run.
type RunEntry struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	Status      string    `json:"status"`
	Nodes       int       `json:"nodes"`
	Outputs     int       `json:"outputs"`
	Diagnostics int       `json:"diagnostics"`
	Detail      string    `json:"detail,omitempty"`
}

// OutputDigest records the content hash of one written output.
type OutputDigest struct {
	RunID  string `json:"runId"`
	Name   string `json:"name"`
	Digest string `json:"digest"`
}
