package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/setevik/flightdesk/internal/config"
	"github.com/setevik/flightdesk/internal/llm"
	"github.com/setevik/flightdesk/internal/report"
)

const (
	// stopMarker cuts off any continuation a generator appends past the
	// requested answer.
	stopMarker = "###"

	// generationFallback replaces an empty cleaned generation.
	generationFallback = "No response generated."

	// Sentinel fields for degraded results.
	failedSummary        = "[AI processing failed]"
	failedRecommendation = "Manual review required."
	unknownLabel         = "Unknown"
)

// Model is the model-backed enrichment pipeline. It composes four
// independently invocable sub-models: two classifiers working over closed
// candidate label sets, and two generators driven by prompt templates.
type Model struct {
	category       *llm.Client
	severity       *llm.Client
	summary        *llm.Client
	recommendation *llm.Client

	categoryLabels []string
	severityLabels []string

	summaryPrompt        string
	recommendationPrompt string

	now func() time.Time
}

// NewModel builds the pipeline from configuration. Configuration gaps are
// fatal here, before any ingestion starts.
func NewModel(cfg config.ModelConfig) (*Model, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("model enrichment: base URL not configured")
	}
	client := func(model string) *llm.Client {
		return &llm.Client{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Model: model}
	}
	m := &Model{
		category:             client(cfg.CategoryModel),
		severity:             client(cfg.SeverityModel),
		summary:              client(cfg.SummaryModel),
		recommendation:       client(cfg.RecommendationModel),
		categoryLabels:       cfg.CategoryLabels,
		severityLabels:       cfg.SeverityLabels,
		summaryPrompt:        cfg.SummaryPrompt,
		recommendationPrompt: cfg.RecommendationPrompt,
		now:                  time.Now,
	}
	for _, c := range []*llm.Client{m.category, m.severity, m.summary, m.recommendation} {
		if c.Model == "" {
			return nil, fmt.Errorf("model enrichment: all four sub-model identifiers must be set")
		}
	}
	if len(m.categoryLabels) == 0 || len(m.severityLabels) == 0 {
		return nil, fmt.Errorf("model enrichment: candidate label sets must not be empty")
	}
	return m, nil
}

// ProcessText runs the four-stage pipeline sequentially: category,
// severity, summary, recommendation. Any sub-call failure degrades to a
// sentinel result; this method never fails.
func (m *Model) ProcessText(ctx context.Context, rawText string) (res report.Result) {
	start := m.now()

	defer func() {
		if r := recover(); r != nil {
			res = m.degraded(fmt.Sprintf("panic: %v", r))
		}
	}()

	category, err := m.classify(ctx, m.category, rawText, m.categoryLabels)
	if err != nil {
		return m.degraded(fmt.Sprintf("category classification: %v", err))
	}

	severity, err := m.classify(ctx, m.severity, rawText, m.severityLabels)
	if err != nil {
		return m.degraded(fmt.Sprintf("severity classification: %v", err))
	}

	summary, err := m.generate(ctx, m.summary, m.summaryPrompt, rawText, category, severity)
	if err != nil {
		return m.degraded(fmt.Sprintf("summary generation: %v", err))
	}

	recommendation, err := m.generate(ctx, m.recommendation, m.recommendationPrompt, rawText, category, severity)
	if err != nil {
		return m.degraded(fmt.Sprintf("recommendation generation: %v", err))
	}

	elapsed := m.now().Sub(start)
	meta := fmt.Sprintf("category_model=%s severity_model=%s summary_model=%s recommendation_model=%s total_ms=%d completed_at=%s",
		m.category.Model, m.severity.Model, m.summary.Model, m.recommendation.Model,
		elapsed.Milliseconds(), m.now().UTC().Format(time.RFC3339))

	return report.Result{
		Summary:        summary,
		Category:       category,
		Severity:       report.Severity(severity),
		Recommendation: recommendation,
		ModelMeta:      meta,
	}
}

// classify asks a sub-model to pick the best-matching label from the
// candidate set and normalizes the reply back onto that set.
func (m *Model) classify(ctx context.Context, client *llm.Client, rawText string, candidates []string) (string, error) {
	system := "You are a flight safety analyst. Answer with exactly one label from the list, nothing else."
	user := fmt.Sprintf("Labels: %s\n\nReport: %s\n\nLabel:", strings.Join(candidates, ", "), rawText)

	reply, err := client.Chat(ctx, system, user)
	if err != nil {
		return "", err
	}
	return matchLabel(reply, candidates), nil
}

// matchLabel maps a model reply onto the closed candidate set: exact
// case-insensitive match first, then substring containment. Off-list
// replies fall back to the first candidate.
func matchLabel(reply string, candidates []string) string {
	cleaned := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(reply), `"'`)))
	for _, c := range candidates {
		if cleaned == strings.ToLower(c) {
			return c
		}
	}
	for _, c := range candidates {
		if strings.Contains(cleaned, strings.ToLower(c)) {
			return c
		}
	}
	return candidates[0]
}

// generate renders the prompt template and cleans the generated text.
func (m *Model) generate(ctx context.Context, client *llm.Client, template, rawText, category, severity string) (string, error) {
	prompt := renderPrompt(template, rawText, category, severity)

	reply, err := client.Chat(ctx, "You are a flight safety analyst.", prompt)
	if err != nil {
		return "", err
	}
	return cleanGenerated(reply, prompt), nil
}

// renderPrompt interpolates the template placeholders. The recommendation
// template also sees the category and severity already produced.
func renderPrompt(template, rawText, category, severity string) string {
	out := strings.ReplaceAll(template, "{text}", rawText)
	out = strings.ReplaceAll(out, "{category}", category)
	out = strings.ReplaceAll(out, "{severity}", severity)
	return out
}

// cleanGenerated post-processes generator output: the echoed prompt
// prefix is stripped, content after the stop marker is discarded, and
// wrapping quotes are trimmed. An empty result becomes the fixed
// fallback string rather than propagating as empty.
func cleanGenerated(out, prompt string) string {
	out = strings.TrimSpace(out)
	out = strings.TrimSpace(strings.TrimPrefix(out, strings.TrimSpace(prompt)))
	if i := strings.Index(out, stopMarker); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	out = strings.Trim(out, `"'`)
	out = strings.TrimSpace(out)
	if out == "" {
		return generationFallback
	}
	return out
}

// degraded builds the sentinel result carrying the fault description.
func (m *Model) degraded(fault string) report.Result {
	return report.Result{
		Summary:        failedSummary,
		Category:       unknownLabel,
		Severity:       unknownLabel,
		Recommendation: failedRecommendation,
		ModelMeta:      fmt.Sprintf("backend=model error=%q captured_at=%s", fault, m.now().UTC().Format(time.RFC3339)),
	}
}
