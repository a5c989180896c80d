package gpat

import "github.com/go-git/go-git/v5/plumbing"

// Report summarizes a finished run.
type Report struct {
	// Direction is the kind of run.
	Direction Direction `json:"direction"`

	// Verified counts positions where both sides agreed.
	Verified int `json:"verified"`

	// Written counts patches added to the archive.
	Written int `json:"written,omitempty"`

	// Skipped counts archive entries an import found already applied.
	Skipped int `json:"skipped,omitempty"`

	// Committed counts commits an import created.
	Committed int `json:"committed,omitempty"`

	// Head is the last commit created by an import.
	Head string `json:"head,omitempty"`

	// Branch is the branch an import moved.
	Branch string `json:"branch,omitempty"`

	// DryRun reports that counts describe what would have been written.
	DryRun bool `json:"dry_run,omitempty"`
}

func (r *Report) setHead(hash plumbing.Hash) {
	if hash.IsZero() {
		r.Head = ""
		return
	}
	r.Head = hash.String()
}
