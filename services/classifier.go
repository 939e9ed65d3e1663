package services

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Classification is the verdict for one piece of user-submitted text.
// SanitizedText is only meaningful when Allowed is true.
type Classification struct {
	Allowed       bool
	SanitizedText string
	Reason        string
}

type Classifier struct {
	policy       *bluemonday.Policy
	blockedTerms []string
	piiPatterns  []piiPattern
	maxLength    int
}

type piiPattern struct {
	pattern *regexp.Regexp
	reason  string
}

const defaultMaxContentLength = 500

var defaultBlockedTerms = []string{
	"harcèlement",
	"suicide",
	"drogue",
	"menace",
	"insulte raciste",
}

func NewClassifier() *Classifier {
	return &Classifier{
		policy:       bluemonday.StrictPolicy(),
		blockedTerms: defaultBlockedTerms,
		piiPatterns: []piiPattern{
			{
				pattern: regexp.MustCompile(`\b0\d(?:[ .-]?\d{2}){4}\b`),
				reason:  "content contains a phone number",
			},
			{
				pattern: regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`),
				reason:  "content contains an email address",
			},
			{
				pattern: regexp.MustCompile(`(?i)\b\d{1,4}\s+(?:rue|avenue|boulevard|allée|impasse|chemin)\b`),
				reason:  "content contains a street address",
			},
		},
		maxLength: defaultMaxContentLength,
	}
}

// Classify strips markup from the text and rejects it when it is empty,
// too long, carries a blocked term, or exposes personal information.
func (cl *Classifier) Classify(text string) *Classification {
	sanitized := strings.TrimSpace(cl.policy.Sanitize(text))
	if sanitized == "" {
		return &Classification{Reason: "content is empty"}
	}
	if len(sanitized) > cl.maxLength {
		return &Classification{Reason: "content is too long"}
	}

	lowered := strings.ToLower(sanitized)
	for _, term := range cl.blockedTerms {
		if strings.Contains(lowered, term) {
			return &Classification{Reason: "content contains a blocked term"}
		}
	}
	for _, pii := range cl.piiPatterns {
		if pii.pattern.MatchString(sanitized) {
			return &Classification{Reason: pii.reason}
		}
	}

	return &Classification{Allowed: true, SanitizedText: sanitized}
}
