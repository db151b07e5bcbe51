package collector

import (
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scripthound/internal/models"
)

const samplePageHTML = `<!DOCTYPE html>
<html>
<head>
<script src="/assets/app.js"></script>
<script>window.settings = {theme: "dark"};</script>
</head>
<body>
<a href="/about">About</a>
<a href="https://other.com/page">Elsewhere</a>
<a href="mailto:team@example.com">Mail</a>
<a href="/about">About again</a>
<script src="https://cdn.other.com/lib.js"></script>
<script>   </script>
<script>console.log("inline two");</script>
<noscript>no js</noscript>
</body>
</html>`

func samplePage() *models.RenderedPage {
	return &models.RenderedPage{
		URL:          "https://example.com/home",
		RequestedURL: "https://example.com/home",
		HTML:         samplePageHTML,
		ScriptURLs: []string{
			"https://example.com/assets/app.js",
			"https://cdn.other.com/lib.js",
		},
	}
}

func TestCollect_OrderAndKinds(t *testing.T) {
	c := NewCollector(true, zerolog.Nop())
	got, err := c.Collect(samplePage())
	require.NoError(t, err)

	// External scripts in load order, then inline in DOM order. Whitespace
	// only inline blocks are dropped.
	require.Len(t, got, 4)

	assert.Equal(t, models.SourceExternal, got[0].SourceKind)
	assert.Equal(t, "https://example.com/assets/app.js", got[0].URL)
	assert.False(t, got[0].CrossOrigin)

	assert.Equal(t, models.SourceExternal, got[1].SourceKind)
	assert.Equal(t, "https://cdn.other.com/lib.js", got[1].URL)
	assert.True(t, got[1].CrossOrigin)

	assert.Equal(t, models.SourceInline, got[2].SourceKind)
	assert.Contains(t, string(got[2].Body), "window.settings")
	assert.Equal(t, 0, got[2].PageOffset)

	assert.Equal(t, models.SourceInline, got[3].SourceKind)
	assert.Contains(t, string(got[3].Body), "inline two")
	assert.Equal(t, 1, got[3].PageOffset)
}

func TestCollect_CrossOriginExcluded(t *testing.T) {
	c := NewCollector(false, zerolog.Nop())
	got, err := c.Collect(samplePage())
	require.NoError(t, err)

	var external []models.CandidateScript
	for _, cand := range got {
		if cand.SourceKind == models.SourceExternal {
			external = append(external, cand)
		}
	}
	require.Len(t, external, 1)
	assert.Equal(t, "https://example.com/assets/app.js", external[0].URL)
}

func TestExtractLinks(t *testing.T) {
	c := NewCollector(true, zerolog.Nop())
	links, err := c.ExtractLinks(samplePage())
	require.NoError(t, err)

	// Relative links resolved, mailto skipped, duplicates removed.
	assert.Equal(t, []string{
		"https://example.com/about",
		"https://other.com/page",
	}, links)
}

func TestScriptSources(t *testing.T) {
	base, err := url.Parse("https://example.com/home")
	require.NoError(t, err)

	sources, err := ScriptSources(samplePageHTML, base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/assets/app.js",
		"https://cdn.other.com/lib.js",
	}, sources)
}
