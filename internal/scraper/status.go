package scraper

import (
	"strings"

	"github.com/jjenkins/legtrack/internal/model"
)

// statusRule maps status/action keywords to a normalized status.
type statusRule struct {
	keywords []string
	status   model.Status
}

// statusRules is evaluated in order; the first matching rule wins. The
// ordering is load-bearing: terminal outcomes (signed, vetoed, failed)
// are checked before in-progress states so a bill whose action text
// mentions "passed" on its way to enactment still classifies as signed.
var statusRules = []statusRule{
	{keywords: []string{"enacted", "became law"}, status: model.StatusSigned},
	{keywords: []string{"vetoed"}, status: model.StatusVetoed},
	{keywords: []string{"failed", "rejected"}, status: model.StatusFailed},
	{keywords: []string{"passed", "agreed to in"}, status: model.StatusPassed},
	{keywords: []string{"introduced", "referred to committee"}, status: model.StatusActive},
}

// InferStatus classifies free-text status and latest-action fields into
// the closed status enumeration. A best-effort keyword classifier:
// unknown text defaults to pending.
func InferStatus(statusText, latestActionText string) model.Status {
	text := strings.ToLower(statusText + " " + latestActionText)

	for _, rule := range statusRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.status
			}
		}
	}

	return model.StatusPending
}
