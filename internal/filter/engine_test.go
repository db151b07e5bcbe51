package filter

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scripthound/internal/config"
	"scripthound/internal/models"
)

func newEngine(t *testing.T, mode string, minSize int) *Engine {
	t.Helper()
	engine, err := NewEngine(config.FilterConfig{Mode: mode, MinSizeBytes: minSize}, zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func externalCandidate(url string, size int) models.CandidateScript {
	return models.CandidateScript{
		SourceKind: models.SourceExternal,
		URL:        url,
		Body:       bytes.Repeat([]byte("x"), size),
	}
}

func TestClassify_SizeCheck(t *testing.T) {
	engine := newEngine(t, config.FilterModeStrict, 150)

	decision := engine.Classify(models.CandidateScript{
		SourceKind: models.SourceInline,
		Body:       bytes.Repeat([]byte("a"), 50),
	})
	assert.False(t, decision.Keep)
	assert.Equal(t, models.ReasonTooSmall, decision.Reason)

	decision = engine.Classify(externalCandidate("https://example.com/app/custom-logic", 200))
	assert.True(t, decision.Keep)
}

func TestClassify_PatternCheck(t *testing.T) {
	engine := newEngine(t, config.FilterModeStrict, 10)

	tests := []struct {
		name   string
		url    string
		keep   bool
		reason string
	}{
		{"analytics host", "https://www.google-analytics.com/ga.js", false, "analytics-tracker"},
		{"minified bundle", "https://example.com/assets/app.min.js", false, "minified-bundle"},
		{"vendored path", "https://example.com/vendor/lib", false, "vendored-library"},
		{"jquery", "https://example.com/js/jquery.min.js", false, "ui-library"},
		{"tag manager", "https://example.com/gtm.js", false, "tag-manager"},
		{"custom app code", "https://example.com/app/checkout", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.Classify(externalCandidate(tt.url, 500))
			assert.Equal(t, tt.keep, decision.Keep)
			if !tt.keep {
				assert.Equal(t, tt.reason, decision.Reason)
			}
		})
	}
}

func TestClassify_InlineContentMatch(t *testing.T) {
	engine := newEngine(t, config.FilterModeRelaxed, 10)

	decision := engine.Classify(models.CandidateScript{
		SourceKind: models.SourceInline,
		Body:       []byte(`window.dataLayer = window.dataLayer || []; /* googletagmanager bootstrap */ x = 1;`),
	})
	assert.False(t, decision.Keep)
	assert.Equal(t, "tag-manager", decision.Reason)

	decision = engine.Classify(models.CandidateScript{
		SourceKind: models.SourceInline,
		Body:       []byte(`function initCheckout(){ return fetch('/api/cart').then(r => r.json()); }`),
	})
	assert.True(t, decision.Keep)
}

// Strict's rule set is a superset of relaxed's: anything relaxed rejects,
// strict rejects too.
func TestFilterMonotonicity(t *testing.T) {
	relaxed := newEngine(t, config.FilterModeRelaxed, 50)
	strict := newEngine(t, config.FilterModeStrict, 50)

	candidates := []models.CandidateScript{
		externalCandidate("https://segment.com/lib", 500),
		externalCandidate("https://example.com/app.min.js", 500),
		externalCandidate("https://example.com/dist/bundle", 500),
		externalCandidate("https://example.com/app/main", 500),
		externalCandidate("https://cdn.jsdelivr.net/npm/lib", 500),
		externalCandidate("https://example.com/font.woff", 500),
		{SourceKind: models.SourceInline, Body: bytes.Repeat([]byte("z"), 20)},
	}

	for _, c := range candidates {
		relaxedDecision := relaxed.Classify(c)
		strictDecision := strict.Classify(c)
		if !relaxedDecision.Keep {
			assert.False(t, strictDecision.Keep,
				"candidate rejected by relaxed (%s) must be rejected by strict", relaxedDecision.Reason)
		}
	}
}

func TestNewEngine_ModeHandling(t *testing.T) {
	engine := newEngine(t, "", 0)
	assert.Equal(t, config.FilterModeStrict, engine.Mode())

	_, err := NewEngine(config.FilterConfig{Mode: "paranoid"}, zerolog.Nop())
	assert.Error(t, err)
}
