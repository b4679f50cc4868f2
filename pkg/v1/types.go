package v1

import "time"

// Result summarizes one sync.
type Result struct {
	FilesProcessed    int     `json:"files_processed"`
	FilesWritten      int     `json:"files_written"`
	StaleFilesRemoved int     `json:"stale_files_removed"`
	HasChanges        bool    `json:"has_changes"`
	Committed         bool    `json:"committed"`
	Pushed            bool    `json:"pushed"`
	Commit            *Commit `json:"commit,omitempty"`
}

// Change is one pending destination write reported by Plan.
type Change struct {
	Name       string `json:"name"`
	Action     string `json:"action"`
	Normalized bool   `json:"normalized"`
	Diff       string `json:"diff,omitempty"`
}

// Commit represents a git commit made by a sync.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
