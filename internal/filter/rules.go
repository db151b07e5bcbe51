package filter

import (
	"fmt"
	"regexp"
)

// RulePattern pairs an uncompiled rejection pattern with a human-readable
// reason. Patterns are matched against lowercased input.
type RulePattern struct {
	Pattern string
	Reason  string
}

// Rule is a compiled rejection rule. First matching rule wins.
type Rule struct {
	re     *regexp.Regexp
	Reason string
}

// baseRulePatterns is the relaxed rejection list. The strict list is built as
// this list plus strictOnlyRulePatterns, so every candidate rejected under
// relaxed mode is also rejected under strict mode.
var baseRulePatterns = []RulePattern{
	{`segment\.com`, "analytics-tracker"},
	{`google-analytics\.com`, "analytics-tracker"},
	{`googletagmanager`, "tag-manager"},
	{`facebook\.(?:net|com)`, "social-widget"},
	{`twitter\.com`, "social-widget"},
	{`linkedin\.com`, "social-widget"},
	{`hotjar`, "session-recorder"},
	{`jquery(?:\.min)?\.js`, "ui-library"},
	{`bootstrap(?:\.min)?\.js`, "ui-library"},
	{`cloudflare\.com`, "cdn-host"},
	{`polyfill\.io`, "polyfill-cdn"},
	{`\bads?\.`, "ad-network"},
	{`track(?:ing)?\.js`, "tracking-script"},
	{`analytics\.js`, "analytics-tracker"},
	{`gtm\.js`, "tag-manager"},
	{`optimizely\.com`, "ab-testing"},
	{`webpack`, "bundler-runtime"},
	{`react`, "framework-library"},
	{`vue`, "framework-library"},
	{`angular`, "framework-library"},
	{`\.(?:woff2?|ttf|eot|svg|png|jpg)\.js$`, "asset-not-script"},
}

// strictOnlyRulePatterns additionally rejects CDN-hosted bundles, minified
// vendor output, and non-script asset extensions that relaxed mode tolerates.
var strictOnlyRulePatterns = []RulePattern{
	{`cdn\.jsdelivr\.net`, "cdn-host"},
	{`\.min\.js$`, "minified-bundle"},
	{`/vendor/`, "vendored-library"},
	{`/plugins/`, "vendored-library"},
	{`/docs/`, "site-content"},
	{`/themes/`, "site-content"},
	{`/dist/`, "build-output"},
	{`\.(?:woff2?|ttf|ttc|otf|eot|svg|png|jpg)$`, "asset-not-script"},
}

func compileRules(patterns []RulePattern) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile filter pattern '%s': %w", p.Pattern, err)
		}
		rules = append(rules, Rule{re: re, Reason: p.Reason})
	}
	return rules, nil
}
