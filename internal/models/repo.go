package models

// Repo holds the immutable facts about a repository as reported by the
// source host listing.
type Repo struct {
	Name          string
	HTMLURL       string
	CloneURL      string
	Description   string
	Language      string
	Homepage      string
	DefaultBranch string
	Fork          bool
	Archived      bool
	Size          int
}
