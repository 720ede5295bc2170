package models

import "time"

// PullRequestInfo is the platform-neutral metadata of a pull/merge request
type PullRequestInfo struct {
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	HeadBranch string     `json:"head_branch"`
	BaseBranch string     `json:"base_branch"`
	HeadSHA    string     `json:"head_sha"`
	BaseSHA    string     `json:"base_sha"`
	HTMLURL    string     `json:"html_url"`
	State      string     `json:"state"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// FileChange is one changed file in a pull request diff
type FileChange struct {
	FileName  string `json:"file_name"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}
