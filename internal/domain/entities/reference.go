package entities

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	gitSuffix  = ".git"
	gitSegment = "/_git/"
	quoteChars = `"'`
)

// referenceSeparators splits GIT_REPOS on commas, semicolons and whitespace runs.
var referenceSeparators = regexp.MustCompile(`[,;\s]+`)

// SanitizeReference trims surrounding whitespace and matching pairs of
// single or double quotes.
func SanitizeReference(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' || first == '\'') && first == last {
			trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			continue
		}
		break
	}
	return trimmed
}

// ParseReferences returns the operator references in processing order:
// GIT_URL, GIT_REPO, then every token of GIT_REPOS. Each token is trimmed
// and unquoted on its own; empty tokens are dropped.
func ParseReferences(url, repo, repos string) []string {
	var refs []string
	for _, single := range []string{url, repo} {
		if ref := SanitizeReference(single); ref != "" {
			refs = append(refs, ref)
		}
	}
	for _, token := range referenceSeparators.Split(unwrapList(repos), -1) {
		if ref := SanitizeReference(token); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// unwrapList strips one pair of quotes around the whole list, as in
// GIT_REPOS="org/a org/b", but only when that quote character does not
// occur inside, so "org/a" "org/b" keeps its per-token quotes.
func unwrapList(repos string) string {
	trimmed := strings.TrimSpace(repos)
	if len(trimmed) < 2 {
		return trimmed
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	inner := trimmed[1 : len(trimmed)-1]
	if (first == '"' || first == '\'') && first == last && !strings.ContainsRune(inner, rune(first)) {
		return inner
	}
	return trimmed
}

// ExtractName derives the local directory name from a URL path or slug:
// the segment after /_git/ when present, otherwise the last segment, with
// any .git suffix removed.
func ExtractName(path string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(path, "/"), gitSuffix)
	if idx := strings.Index(trimmed, gitSegment); idx >= 0 {
		trimmed = trimmed[idx+len(gitSegment):]
	} else if idx = strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return SanitizeReference(trimmed)
}

// ValidateName fails unless name is usable as a single directory component.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty repository name", ErrConfiguration)
	case name == "." || name == "..":
		return fmt.Errorf("%w: repository name %q is not a directory name", ErrConfiguration, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: repository name %q contains a path separator", ErrConfiguration, name)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("%w: repository name %q starts with a dash", ErrConfiguration, name)
	case strings.ContainsAny(name, quoteChars):
		return fmt.Errorf("%w: repository name %q contains a quote", ErrConfiguration, name)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: repository name %q contains a control or space character", ErrConfiguration, name)
		}
	}
	return nil
}

// splitSlug validates a slug and returns its segments.
func splitSlug(slug string) ([]string, error) {
	if strings.ContainsAny(slug, `:@\?#`+quoteChars) {
		return nil, fmt.Errorf("%w: slug %q contains characters that are not allowed", ErrConfiguration, slug)
	}
	segments := strings.Split(strings.Trim(slug, "/"), "/")
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			return nil, fmt.Errorf("%w: slug %q has an empty or relative segment", ErrConfiguration, slug)
		}
		for _, r := range segment {
			if unicode.IsControl(r) || unicode.IsSpace(r) {
				return nil, fmt.Errorf("%w: slug %q contains whitespace", ErrConfiguration, slug)
			}
		}
	}
	return segments, nil
}
