package images

import (
	"context"
	"net/url"
	"strings"

	"roster-scraper/internal/types"
)

// Prober reports whether a URL answers with a success status
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, url string) bool

// Probe calls f
func (f ProberFunc) Probe(ctx context.Context, url string) bool {
	return f(ctx, url)
}

// qualityHints are tried in order on URLs without a width marker
var qualityHints = []struct{ key, value string }{
	{"original", "1"},
	{"size", "2048"},
}

// NegotiateResolution probes candidates in order and returns the first that
// answers. ok is false when none did.
func NegotiateResolution(ctx context.Context, candidates []string, prober Prober) (string, bool) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if prober.Probe(ctx, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// ResolutionCandidates lists the variants of rawURL to probe, best first.
// URLs with a width marker get that marker swapped for every priority level;
// others get quality hints appended to the query string.
func ResolutionCandidates(rawURL string) []string {
	if _, start, end, ok := types.FindResolutionToken(rawURL); ok {
		candidates := make([]string, 0, len(types.ResolutionPriority))
		for _, level := range types.ResolutionPriority {
			candidates = append(candidates, rawURL[:start]+level+rawURL[end:])
		}
		return candidates
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var candidates []string
	for _, hint := range qualityHints {
		// The existing query is kept byte for byte so signed URLs stay valid
		variant := *u
		param := url.QueryEscape(hint.key) + "=" + url.QueryEscape(hint.value)
		if variant.RawQuery == "" {
			variant.RawQuery = param
		} else {
			variant.RawQuery += "&" + param
		}
		candidates = append(candidates, variant.String())
	}
	return candidates
}

// Resolver negotiates the highest retrievable resolution of a photo
type Resolver struct {
	prober Prober
	logger types.Logger
}

// NewResolver creates a resolver probing through prober
func NewResolver(prober Prober, logger types.Logger) *Resolver {
	return &Resolver{prober: prober, logger: logger}
}

// Resolve returns the best URL for candidate. It never fails: when no
// variant answers, the absolutized source URL is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, candidate *types.ImageCandidate, base *url.URL) string {
	if candidate == nil || strings.TrimSpace(candidate.SourceURL) == "" {
		return ""
	}

	sourceURL := absolutize(base, candidate.SourceURL)
	candidates := ResolutionCandidates(sourceURL)

	if best, ok := NegotiateResolution(ctx, candidates, r.prober); ok {
		if best != sourceURL {
			r.logger.Debugf("Resolved %s to %s", sourceURL, best)
		}
		return best
	}

	r.logger.Debug(&types.ResolutionError{URL: sourceURL, Attempts: len(candidates)})
	return sourceURL
}

func absolutize(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil || base == nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}
