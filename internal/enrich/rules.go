package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/setevik/flightdesk/internal/format"
	"github.com/setevik/flightdesk/internal/report"
)

const (
	rulesBackendID = "MockAI-Rule-Based-v2.1"

	// Nominal per-call latency recorded in model_meta. Descriptive only,
	// not a measurement.
	rulesNominalLatencyMS = 150

	summaryPrefixLen = 50
)

// rule maps a keyword set to a classification. Rules are evaluated in
// order against the lower-cased text; the first rule with any keyword
// present as a substring wins.
type rule struct {
	keywords       []string
	category       string
	severity       report.Severity
	recommendation string
}

var rulesTable = []rule{
	{
		keywords:       []string{"bird strike", "damage", "fire"},
		category:       "Critical Failure",
		severity:       report.SevCritical,
		recommendation: "Ground the aircraft. Full engineering review required.",
	},
	{
		keywords:       []string{"engine", "hydraulic", "apu", "pressure", "vibration"},
		category:       "Mechanical",
		severity:       report.SevHigh,
		recommendation: "Immediate maintenance check required.",
	},
	{
		keywords:       []string{"landing gear", "tire", "brakes", "slats"},
		category:       "Flight Controls",
		severity:       report.SevHigh,
		recommendation: "Inspect relevant flight control systems before next flight.",
	},
	{
		keywords:       []string{"nav", "display", "autopilot", "fms", "sensor", "avionics", "radio"},
		category:       "Avionics",
		severity:       report.SevMedium,
		recommendation: "Schedule maintenance for the avionics system.",
	},
	{
		keywords:       []string{"weather", "turbulence", "wind shear", "gusts", "storm"},
		category:       "Weather",
		severity:       report.SevMedium,
		recommendation: "Review flight plan and weather briefings.",
	},
	{
		keywords:       []string{"pilot", "co-pilot", "crew", "atc", "checklist", "disagreement"},
		category:       "Human Factors",
		severity:       report.SevLow,
		recommendation: "Add to next training session for crew resource management.",
	},
}

var defaultRule = rule{
	category:       "General",
	severity:       report.SevLow,
	recommendation: "Monitor closely.",
}

// Rules is the deterministic rule-engine backend.
type Rules struct {
	now func() time.Time
}

// NewRules creates the rule-engine backend.
func NewRules() *Rules {
	return &Rules{now: time.Now}
}

// ProcessText classifies the text with the ordered keyword rules.
func (r *Rules) ProcessText(_ context.Context, rawText string) report.Result {
	matched := matchRule(rawText)

	meta := fmt.Sprintf("backend=%s nominal_latency_ms=%d captured_at=%s",
		rulesBackendID, rulesNominalLatencyMS, r.now().UTC().Format(time.RFC3339))

	return report.Result{
		Summary:        "Event involving: " + format.Prefix(rawText, summaryPrefixLen),
		Category:       matched.category,
		Severity:       matched.severity,
		Recommendation: matched.recommendation,
		ModelMeta:      meta,
	}
}

func matchRule(rawText string) rule {
	lower := strings.ToLower(rawText)
	for _, ru := range rulesTable {
		for _, kw := range ru.keywords {
			if strings.Contains(lower, kw) {
				return ru
			}
		}
	}
	return defaultRule
}
