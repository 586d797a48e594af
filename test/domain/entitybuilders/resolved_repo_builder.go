//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/secureclone/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

const (
	defaultRepoName = "test-repo"
	defaultRepoURL  = "https://github.com/test-org/test-repo.git"
)

// ResolvedRepoBuilder helps create resolved repositories with a fluent interface.
type ResolvedRepoBuilder struct {
	*testkit.BaseBuilder
	reference string
	url       string
	name      string
	branch    string
	provider  string
}

// NewResolvedRepoBuilder creates a new builder with sensible defaults.
func NewResolvedRepoBuilder() *ResolvedRepoBuilder {
	return &ResolvedRepoBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		reference:   "test-org/" + defaultRepoName,
		url:         defaultRepoURL,
		name:        defaultRepoName,
		branch:      entities.DefaultBranch,
		provider:    entities.ProviderGitHub,
	}
}

// WithReference sets the operator reference.
func (b *ResolvedRepoBuilder) WithReference(reference string) *ResolvedRepoBuilder {
	b.reference = reference
	return b
}

// WithURL sets the clone URL.
func (b *ResolvedRepoBuilder) WithURL(url string) *ResolvedRepoBuilder {
	b.url = url
	return b
}

// WithName sets the local directory name.
func (b *ResolvedRepoBuilder) WithName(name string) *ResolvedRepoBuilder {
	b.name = name
	return b
}

// WithBranch sets the branch.
func (b *ResolvedRepoBuilder) WithBranch(branch string) *ResolvedRepoBuilder {
	b.branch = branch
	return b
}

// WithProvider sets the provider name.
func (b *ResolvedRepoBuilder) WithProvider(provider string) *ResolvedRepoBuilder {
	b.provider = provider
	return b
}

// Build creates the resolved repository (satisfies testkit.Builder interface).
func (b *ResolvedRepoBuilder) Build() interface{} {
	return b.BuildResolvedRepo()
}

// BuildResolvedRepo creates the resolved repository with a concrete return type.
func (b *ResolvedRepoBuilder) BuildResolvedRepo() entities.ResolvedRepo {
	return entities.ResolvedRepo{
		Reference: b.reference,
		URL:       b.url,
		Name:      b.name,
		Branch:    b.branch,
		Provider:  b.provider,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ResolvedRepoBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.reference = "test-org/" + defaultRepoName
	b.url = defaultRepoURL
	b.name = defaultRepoName
	b.branch = entities.DefaultBranch
	b.provider = entities.ProviderGitHub
	return b
}

// Clone creates a deep copy of the ResolvedRepoBuilder.
func (b *ResolvedRepoBuilder) Clone() testkit.Builder {
	return &ResolvedRepoBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		reference:   b.reference,
		url:         b.url,
		name:        b.name,
		branch:      b.branch,
		provider:    b.provider,
	}
}
