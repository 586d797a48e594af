package entities

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// absoluteURLPattern matches references that are used as-is.
var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

// ResolvedRepo is a reference expanded to its clone URL, local directory
// name and branch.
type ResolvedRepo struct {
	Reference string
	URL       string
	Name      string
	Branch    string
	Provider  string
}

func (r ResolvedRepo) String() string {
	return fmt.Sprintf("%s (%s @ %s)", r.Name, r.RedactedURL(), r.Branch)
}

// RedactedURL hides any password embedded in the URL by the operator.
func (r ResolvedRepo) RedactedURL() string {
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	return parsed.Redacted()
}

// Resolver turns operator references into ResolvedRepo values.
type Resolver struct {
	registry *ProviderRegistry
}

// NewResolver creates a Resolver backed by the given provider registry.
func NewResolver(registry *ProviderRegistry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve expands a single reference. Absolute http(s) URLs are used as-is;
// slugs are shaped by the selected provider and host.
func (it *Resolver) Resolve(ref, provider, host, branch string) (ResolvedRepo, error) {
	sanitized := SanitizeReference(ref)
	if sanitized == "" {
		return ResolvedRepo{}, fmt.Errorf("%w: empty repository reference", ErrConfiguration)
	}
	if branch = SanitizeReference(branch); branch == "" {
		branch = DefaultBranch
	}

	var (
		resolved ResolvedRepo
		err      error
	)
	if absoluteURLPattern.MatchString(sanitized) {
		resolved, err = it.resolveURL(sanitized)
	} else {
		resolved, err = it.resolveSlug(sanitized, provider, host)
	}
	if err != nil {
		return ResolvedRepo{}, err
	}

	if nameErr := ValidateName(resolved.Name); nameErr != nil {
		return ResolvedRepo{}, fmt.Errorf("reference %q: %w", sanitized, nameErr)
	}

	resolved.Reference = sanitized
	resolved.Branch = branch
	return resolved, nil
}

// ResolveAll resolves every reference of the settings before any work
// starts. Exact duplicates are dropped; two references that would share a
// directory but point at different URLs fail with ErrConfiguration.
func (it *Resolver) ResolveAll(settings *Settings) ([]ResolvedRepo, error) {
	refs := settings.RawReferences()
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: one of GIT_URL, GIT_REPO or GIT_REPOS is required", ErrConfiguration)
	}

	seen := make(map[string]ResolvedRepo, len(refs))
	resolved := make([]ResolvedRepo, 0, len(refs))
	for _, ref := range refs {
		repo, err := it.Resolve(ref, settings.Provider, settings.Host, settings.Branch)
		if err != nil {
			return nil, err
		}

		if previous, ok := seen[repo.Name]; ok {
			if previous.URL == repo.URL {
				logger.Debugf("Skipping duplicate reference %q (%s)", ref, repo.URL)
				continue
			}
			return nil, fmt.Errorf(
				"%w: references %q and %q both resolve to directory %q",
				ErrConfiguration, previous.Reference, repo.Reference, repo.Name,
			)
		}

		seen[repo.Name] = repo
		resolved = append(resolved, repo)
	}
	return resolved, nil
}

// DefaultUsername returns the askpass username for the selected provider
// and host: the Azure DevOps default for Azure hosts, the generic one otherwise.
func (it *Resolver) DefaultUsername(provider, host string) string {
	if provider == "" && host != "" {
		if byHost, ok := it.registry.ForHost(normalizeHost(host)); ok && byHost.Name == ProviderAzureDevOps {
			return byHost.DefaultUsername
		}
	}
	return it.selectProvider(provider).DefaultUsername
}

func (it *Resolver) resolveURL(raw string) (ResolvedRepo, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ResolvedRepo{}, fmt.Errorf("%w: invalid repository URL %q: %w", ErrConfiguration, raw, err)
	}
	if parsed.Host == "" || strings.Trim(parsed.Path, "/") == "" {
		return ResolvedRepo{}, fmt.Errorf("%w: repository URL %q has no host or path", ErrConfiguration, raw)
	}
	if strings.EqualFold(parsed.Scheme, "http") {
		logger.Warnf("Repository URL %s uses plain http; the credential will not be protected in transit", parsed.Redacted())
	}

	providerName := it.registry.Fallback().Name
	if provider, ok := it.registry.ForHost(parsed.Host); ok {
		providerName = provider.Name
	}

	return ResolvedRepo{
		URL:      raw,
		Name:     ExtractName(parsed.Path),
		Provider: providerName,
	}, nil
}

func (it *Resolver) resolveSlug(slug, providerName, host string) (ResolvedRepo, error) {
	provider := it.selectProvider(providerName)

	effectiveHost := normalizeHost(host)
	if effectiveHost == "" {
		effectiveHost = provider.DefaultHost
	}
	if strings.ContainsAny(effectiveHost, "/@ \t") {
		return ResolvedRepo{}, fmt.Errorf("%w: invalid host %q", ErrConfiguration, host)
	}

	cloneURL, err := provider.BuildURL(effectiveHost, slug)
	if err != nil {
		return ResolvedRepo{}, err
	}

	return ResolvedRepo{
		URL:      cloneURL,
		Name:     ExtractName(slug),
		Provider: provider.Name,
	}, nil
}

// selectProvider picks the provider by explicit name and falls back to the
// generic one. An explicit host alone never changes the URL shape.
func (it *Resolver) selectProvider(providerName string) Provider {
	if providerName == "" {
		return it.registry.Fallback()
	}
	if provider, ok := it.registry.Get(providerName); ok {
		return provider
	}
	logger.Warnf("Unknown provider %q, using the generic URL shape", providerName)
	return it.registry.Fallback()
}

func normalizeHost(host string) string {
	trimmed := SanitizeReference(host)
	lowered := strings.ToLower(trimmed)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lowered, scheme) {
			trimmed = trimmed[len(scheme):]
			break
		}
	}
	return strings.TrimRight(trimmed, "/")
}
