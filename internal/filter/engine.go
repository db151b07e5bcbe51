package filter

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"scripthound/internal/config"
	"scripthound/internal/models"
)

// Engine classifies candidates as interesting or uninteresting under one
// filter mode. Rules are compiled once at construction and never mutated;
// Classify is a pure function of the candidate.
type Engine struct {
	mode            string
	minSizeBytes    int
	inlineScanBytes int
	rules           []Rule
	logger          zerolog.Logger
}

// NewEngine builds an engine for the given filter configuration.
func NewEngine(cfg config.FilterConfig, logger zerolog.Logger) (*Engine, error) {
	mode := strings.ToLower(cfg.Mode)
	patterns := make([]RulePattern, 0, len(baseRulePatterns)+len(strictOnlyRulePatterns))
	patterns = append(patterns, baseRulePatterns...)

	switch mode {
	case config.FilterModeRelaxed:
	case config.FilterModeStrict, "":
		mode = config.FilterModeStrict
		patterns = append(patterns, strictOnlyRulePatterns...)
	default:
		return nil, fmt.Errorf("unknown filter mode '%s'", cfg.Mode)
	}

	rules, err := compileRules(patterns)
	if err != nil {
		return nil, err
	}

	inlineScan := cfg.InlineScanBytes
	if inlineScan <= 0 {
		inlineScan = config.DefaultInlineScanBytes
	}

	return &Engine{
		mode:            mode,
		minSizeBytes:    cfg.MinSizeBytes,
		inlineScanBytes: inlineScan,
		rules:           rules,
		logger:          logger.With().Str("component", "FilterEngine").Str("mode", mode).Logger(),
	}, nil
}

// Mode returns the active filter mode.
func (e *Engine) Mode() string {
	return e.mode
}

// Classify decides whether a candidate is worth archiving. Both checks must
// pass: the size floor and the rejection pattern list. External candidates
// are matched on their URL, inline candidates on their leading content.
func (e *Engine) Classify(candidate models.CandidateScript) models.FilterDecision {
	if len(candidate.Body) < e.minSizeBytes {
		return models.FilterDecision{Keep: false, Reason: models.ReasonTooSmall}
	}

	subject := e.matchSubject(candidate)
	for _, rule := range e.rules {
		if rule.re.MatchString(subject) {
			return models.FilterDecision{Keep: false, Reason: rule.Reason}
		}
	}
	return models.FilterDecision{Keep: true}
}

func (e *Engine) matchSubject(candidate models.CandidateScript) string {
	if candidate.SourceKind == models.SourceExternal && candidate.URL != "" {
		return strings.ToLower(candidate.URL)
	}
	body := candidate.Body
	if len(body) > e.inlineScanBytes {
		body = body[:e.inlineScanBytes]
	}
	return strings.ToLower(string(body))
}
