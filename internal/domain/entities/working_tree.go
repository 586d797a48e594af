package entities

import "strings"

// WorkingTreeState is the on-disk state of <reposRoot>/<name>.
type WorkingTreeState string

const (
	StateAbsent           WorkingTreeState = "absent"
	StatePresentNonGit    WorkingTreeState = "present-non-git"
	StateMatchingOrigin   WorkingTreeState = "present-git-matching-origin"
	StateMismatchedOrigin WorkingTreeState = "present-git-mismatched-origin"
)

// WorkingTree is what a git backend observes at a destination.
type WorkingTree struct {
	Path string
	// IsGit is true when the directory holds version-control metadata.
	IsGit bool
	// Empty is true when the directory is missing or has no entries.
	Empty bool
	// OriginURL is empty when the repository has no origin remote.
	OriginURL string
}

// State classifies the working tree against the repository expected there.
func (w WorkingTree) State(expected ResolvedRepo) WorkingTreeState {
	switch {
	case !w.IsGit && w.Empty:
		return StateAbsent
	case !w.IsGit:
		return StatePresentNonGit
	case OriginMatches(w.OriginURL, expected.URL, expected.Name):
		return StateMatchingOrigin
	default:
		return StateMismatchedOrigin
	}
}

// OriginMatches is the origin mismatch heuristic: the existing remote URL
// matches when it contains the expected repository name or the expected URL
// as a substring. It tolerates scheme and embedded-credential differences and
// still rejects a different repository under the same local name. Two
// repositories whose names appear inside each other's URLs are a known
// false negative.
func OriginMatches(existingURL, expectedURL, expectedName string) bool {
	if existingURL == "" {
		return false
	}
	if expectedName != "" && strings.Contains(existingURL, expectedName) {
		return true
	}
	return expectedURL != "" && strings.Contains(existingURL, expectedURL)
}
