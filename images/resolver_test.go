package images

import (
	"context"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"roster-scraper/internal/types"
)

// fakeProber answers true for a fixed set of URLs and records every probe
type fakeProber struct {
	ok     map[string]bool
	probed []string
}

func (f *fakeProber) Probe(ctx context.Context, url string) bool {
	f.probed = append(f.probed, url)
	return f.ok[url]
}

func TestResolutionCandidates_WidthToken(t *testing.T) {
	candidates := ResolutionCandidates("https://cdn.example.com/players/photo_w180.jpg")

	assert.Equal(t, []string{
		"https://cdn.example.com/players/photo_original.jpg",
		"https://cdn.example.com/players/photo_w2048.jpg",
		"https://cdn.example.com/players/photo_w1536.jpg",
		"https://cdn.example.com/players/photo_w1280.jpg",
		"https://cdn.example.com/players/photo_w1024.jpg",
		"https://cdn.example.com/players/photo_w512.jpg",
		"https://cdn.example.com/players/photo_w360.jpg",
		"https://cdn.example.com/players/photo_w180.jpg",
	}, candidates)
}

func TestResolutionCandidates_NoToken(t *testing.T) {
	candidates := ResolutionCandidates("https://www2.example.com/img/portrait.png?v=3")

	assert.Equal(t, []string{
		"https://www2.example.com/img/portrait.png?v=3&original=1",
		"https://www2.example.com/img/portrait.png?v=3&size=2048",
	}, candidates)
}

func TestResolutionCandidates_SignedQueryKept(t *testing.T) {
	raw := "https://cdn.example.com/img/portrait.png?X-Amz-Signature=ab%2Fcd&Expires=1"

	assert.Equal(t, []string{
		raw + "&original=1",
		raw + "&size=2048",
	}, ResolutionCandidates(raw))
}

func TestResolutionCandidates_WidthMarkerInHostIgnored(t *testing.T) {
	candidates := ResolutionCandidates("https://w1.cdn.example.com/players/photo.jpg")

	assert.Equal(t, []string{
		"https://w1.cdn.example.com/players/photo.jpg?original=1",
		"https://w1.cdn.example.com/players/photo.jpg?size=2048",
	}, candidates)
}

func TestNegotiateResolution_HighestSuccessfulProbeWins(t *testing.T) {
	prober := &fakeProber{ok: map[string]bool{
		"https://cdn.example.com/photo_w1024.jpg": true,
		"https://cdn.example.com/photo_w2048.jpg": true,
	}}

	best, ok := NegotiateResolution(context.Background(), ResolutionCandidates("https://cdn.example.com/photo_w180.jpg"), prober)

	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/photo_w2048.jpg", best)
	assert.Equal(t, []string{
		"https://cdn.example.com/photo_original.jpg",
		"https://cdn.example.com/photo_w2048.jpg",
	}, prober.probed, "probing stops at the first success")
}

func TestNegotiateResolution_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &fakeProber{ok: map[string]bool{"a": true}}
	_, ok := NegotiateResolution(ctx, []string{"a"}, prober)

	assert.False(t, ok)
	assert.Empty(t, prober.probed)
}

func TestResolver_Resolve(t *testing.T) {
	base, _ := url.Parse("https://www.ihf.info/teams/ger")
	logger := logrus.New()

	t.Run("relative url is absolutized and upgraded", func(t *testing.T) {
		prober := &fakeProber{ok: map[string]bool{"https://www.ihf.info/img/p_w1536.jpg": true}}
		resolver := NewResolver(prober, logger)

		got := resolver.Resolve(context.Background(), types.NewImageCandidate("/img/p_w180.jpg"), base)
		assert.Equal(t, "https://www.ihf.info/img/p_w1536.jpg", got)
	})

	t.Run("no probe succeeds", func(t *testing.T) {
		prober := &fakeProber{}
		resolver := NewResolver(prober, logger)

		got := resolver.Resolve(context.Background(), types.NewImageCandidate("/img/p_w180.jpg"), base)
		assert.Equal(t, "https://www.ihf.info/img/p_w180.jpg", got)
		assert.Len(t, prober.probed, len(types.ResolutionPriority))
	})

	t.Run("quality hint accepted", func(t *testing.T) {
		prober := ProberFunc(func(ctx context.Context, u string) bool {
			return u == "https://cdn.example.com/p.jpg?size=2048"
		})
		resolver := NewResolver(prober, logger)

		got := resolver.Resolve(context.Background(), types.NewImageCandidate("https://cdn.example.com/p.jpg"), base)
		assert.Equal(t, "https://cdn.example.com/p.jpg?size=2048", got)
	})

	t.Run("missing candidate", func(t *testing.T) {
		resolver := NewResolver(&fakeProber{}, logger)
		assert.Equal(t, "", resolver.Resolve(context.Background(), nil, base))
	})
}
