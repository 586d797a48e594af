package entities

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ProviderGitHub      = "github"
	ProviderGitLab      = "gitlab"
	ProviderAzureDevOps = "azuredevops"

	azureSlugSegments    = 3
	azureGitSlugSegments = 4
	minStandardSegments  = 2
)

// Provider describes how a hosting provider shapes clone URLs from slugs.
type Provider struct {
	Name            string
	DefaultHost     string
	DefaultUsername string
	// HostMarkers identify the provider from an explicit host.
	HostMarkers []string
	// BuildURL turns a validated host and slug into a clone URL.
	BuildURL func(host, slug string) (string, error)
}

// ProviderRegistry manages the URL shapes of the known hosting providers,
// addressable by name or alias.
type ProviderRegistry struct {
	providers map[string]Provider
	aliases   map[string]string
	fallback  string
}

// NewProviderRegistry creates an empty registry whose unknown names fall
// back to the given provider.
func NewProviderRegistry(fallback string) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
		aliases:   make(map[string]string),
		fallback:  fallback,
	}
}

// NewDefaultProviderRegistry registers GitHub (generic default), GitLab and
// Azure DevOps with their aliases.
func NewDefaultProviderRegistry() *ProviderRegistry {
	reg := NewProviderRegistry(ProviderGitHub)
	reg.Register(Provider{
		Name:            ProviderGitHub,
		DefaultHost:     "github.com",
		DefaultUsername: "x-access-token",
		HostMarkers:     []string{"github"},
		BuildURL:        buildStandardURL,
	}, "gh")
	reg.Register(Provider{
		Name:            ProviderGitLab,
		DefaultHost:     "gitlab.com",
		DefaultUsername: "oauth2",
		HostMarkers:     []string{"gitlab"},
		BuildURL:        buildStandardURL,
	}, "gl")
	reg.Register(Provider{
		Name:            ProviderAzureDevOps,
		DefaultHost:     "dev.azure.com",
		DefaultUsername: "azdo",
		HostMarkers:     []string{"dev.azure.com", "visualstudio.com"},
		BuildURL:        buildAzureDevOpsURL,
	}, "azure", "azure-devops", "ado", "devops", "vsts")
	return reg
}

// Register adds a provider under its name and the given aliases.
func (r *ProviderRegistry) Register(provider Provider, aliases ...string) {
	r.providers[provider.Name] = provider
	r.aliases[provider.Name] = provider.Name
	for _, alias := range aliases {
		r.aliases[strings.ToLower(alias)] = provider.Name
	}
}

// Get returns the provider registered under name or alias.
func (r *ProviderRegistry) Get(name string) (Provider, bool) {
	canonical, ok := r.aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Provider{}, false
	}
	provider, ok := r.providers[canonical]
	return provider, ok
}

// Fallback returns the generic provider used when none is selected.
func (r *ProviderRegistry) Fallback() Provider {
	return r.providers[r.fallback]
}

// ForHost returns the provider whose host markers match host, if any.
func (r *ProviderRegistry) ForHost(host string) (Provider, bool) {
	lowered := strings.ToLower(host)
	for _, name := range r.Names() {
		provider := r.providers[name]
		for _, marker := range provider.HostMarkers {
			if strings.Contains(lowered, marker) {
				return provider, true
			}
		}
	}
	return Provider{}, false
}

// Names returns the registered provider names in a stable order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildStandardURL handles the common layout used by GitHub and GitLab:
//
//	https://{host}/{org}/{repo}.git
func buildStandardURL(host, slug string) (string, error) {
	segments, err := splitSlug(slug)
	if err != nil {
		return "", err
	}
	if len(segments) < minStandardSegments {
		return "", fmt.Errorf("%w: slug %q must look like org/repo", ErrConfiguration, slug)
	}
	path := strings.TrimSuffix(strings.Join(segments, "/"), gitSuffix)
	return fmt.Sprintf("https://%s/%s%s", host, path, gitSuffix), nil
}

// buildAzureDevOpsURL normalizes org/project/repo to the _git layout:
//
//	https://{host}/{org}/{project}/_git/{repo}
func buildAzureDevOpsURL(host, slug string) (string, error) {
	segments, err := splitSlug(slug)
	if err != nil {
		return "", err
	}
	switch {
	case len(segments) == azureSlugSegments && segments[2] != "_git":
		segments = []string{segments[0], segments[1], "_git", segments[2]}
	case len(segments) == azureGitSlugSegments && segments[2] == "_git":
	default:
		return "", fmt.Errorf(
			"%w: Azure DevOps slug %q must look like org/project/repo or org/project/_git/repo",
			ErrConfiguration, slug,
		)
	}
	segments[3] = strings.TrimSuffix(segments[3], gitSuffix)
	return fmt.Sprintf("https://%s/%s", host, strings.Join(segments, "/")), nil
}
