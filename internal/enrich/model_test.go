package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/setevik/flightdesk/internal/config"
	"github.com/setevik/flightdesk/internal/report"
)

type roundTrip func(*http.Request) (*http.Response, error)

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func chatReply(content string) *http.Response {
	body := fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		BaseURL:              "https://api.test/v1/chat/completions",
		CategoryModel:        "cat-model",
		SeverityModel:        "sev-model",
		SummaryModel:         "sum-model",
		RecommendationModel:  "rec-model",
		CategoryLabels:       []string{"Mechanical", "Weather", "General"},
		SeverityLabels:       []string{"low", "medium", "high", "critical"},
		SummaryPrompt:        "Summarize: {text}",
		RecommendationPrompt: "Category {category}, severity {severity}. Report: {text}. Recommend:",
	}
}

// withTransport points every sub-model client at the fake transport.
func withTransport(t *testing.T, m *Model, rt roundTrip) *Model {
	t.Helper()
	hc := &http.Client{Transport: rt}
	m.category.HTTPClient = hc
	m.severity.HTTPClient = hc
	m.summary.HTTPClient = hc
	m.recommendation.HTTPClient = hc
	return m
}

// replyByModel routes each sub-model id to a canned reply.
func replyByModel(replies map[string]string) roundTrip {
	return func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		for model, reply := range replies {
			if strings.Contains(string(body), fmt.Sprintf(`"model":%q`, model)) {
				return chatReply(reply), nil
			}
		}
		return chatReply("unexpected"), nil
	}
}

func TestModelPipeline(t *testing.T) {
	m, err := NewModel(testModelConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	withTransport(t, m, replyByModel(map[string]string{
		"cat-model": "Mechanical",
		"sev-model": "high",
		"sum-model": "Engine ran rough on climb.",
		"rec-model": "Inspect the engine before next flight.",
	}))

	res := m.ProcessText(context.Background(), "Engine running rough")
	if res.Category != "Mechanical" {
		t.Errorf("Category = %q", res.Category)
	}
	if res.Severity != report.SevHigh {
		t.Errorf("Severity = %q", res.Severity)
	}
	if res.Summary != "Engine ran rough on climb." {
		t.Errorf("Summary = %q", res.Summary)
	}
	if res.Recommendation != "Inspect the engine before next flight." {
		t.Errorf("Recommendation = %q", res.Recommendation)
	}
	for _, want := range []string{"cat-model", "sev-model", "sum-model", "rec-model", "total_ms="} {
		if !strings.Contains(res.ModelMeta, want) {
			t.Errorf("ModelMeta missing %q: %q", want, res.ModelMeta)
		}
	}
}

func TestModelDegradesOnFailure(t *testing.T) {
	m, err := NewModel(testModelConfig())
	if err != nil {
		t.Fatal(err)
	}
	withTransport(t, m, func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("connection refused")
	})

	res := m.ProcessText(context.Background(), "Engine running rough")
	if res.Category != "Unknown" {
		t.Errorf("Category = %q, want Unknown", res.Category)
	}
	if res.Severity != "Unknown" {
		t.Errorf("Severity = %q, want Unknown", res.Severity)
	}
	if res.Summary == "" || res.Summary != failedSummary {
		t.Errorf("Summary = %q, want failure marker", res.Summary)
	}
	if res.Recommendation != failedRecommendation {
		t.Errorf("Recommendation = %q, want failure marker", res.Recommendation)
	}
	if !strings.Contains(res.ModelMeta, "connection refused") {
		t.Errorf("ModelMeta should carry the fault: %q", res.ModelMeta)
	}
}

func TestModelDegradesMidPipeline(t *testing.T) {
	// Category succeeds, severity fails: the whole result degrades.
	m, err := NewModel(testModelConfig())
	if err != nil {
		t.Fatal(err)
	}
	withTransport(t, m, func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(string(body), `"model":"cat-model"`) {
			return chatReply("Mechanical"), nil
		}
		return nil, fmt.Errorf("upstream timeout")
	})

	res := m.ProcessText(context.Background(), "Engine running rough")
	if res.Category != "Unknown" {
		t.Errorf("Category = %q, want Unknown", res.Category)
	}
	if !strings.Contains(res.ModelMeta, "severity classification") {
		t.Errorf("ModelMeta should name the failed stage: %q", res.ModelMeta)
	}
}

func TestMatchLabel(t *testing.T) {
	candidates := []string{"Mechanical", "Weather", "General"}
	tests := []struct {
		reply string
		want  string
	}{
		{"Mechanical", "Mechanical"},
		{"mechanical", "Mechanical"},
		{" \"Weather\" ", "Weather"},
		{"The label is General.", "General"},
		{"no such label", "Mechanical"},
	}
	for _, tt := range tests {
		if got := matchLabel(tt.reply, candidates); got != tt.want {
			t.Errorf("matchLabel(%q) = %q, want %q", tt.reply, got, tt.want)
		}
	}
}

func TestCleanGenerated(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		prompt string
		want   string
	}{
		{"plain", "A clean answer.", "Summarize: x", "A clean answer."},
		{"echoed prompt", "Summarize: x A clean answer.", "Summarize: x", "A clean answer."},
		{"stop marker", "Answer. ### trailing junk", "p", "Answer."},
		{"wrapped quotes", `"Quoted answer."`, "p", "Quoted answer."},
		{"empty", "   ", "p", generationFallback},
		{"only echo", "Summarize: x", "Summarize: x", generationFallback},
	}
	for _, tt := range tests {
		if got := cleanGenerated(tt.out, tt.prompt); got != tt.want {
			t.Errorf("%s: cleanGenerated = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRenderPrompt(t *testing.T) {
	got := renderPrompt("Category {category}, severity {severity}: {text}", "raw", "Weather", "medium")
	want := "Category Weather, severity medium: raw"
	if got != want {
		t.Errorf("renderPrompt = %q, want %q", got, want)
	}
}

func TestNewModelValidation(t *testing.T) {
	cfg := testModelConfig()
	cfg.BaseURL = ""
	if _, err := NewModel(cfg); err == nil {
		t.Error("expected error for missing base URL")
	}

	cfg = testModelConfig()
	cfg.SeverityModel = ""
	if _, err := NewModel(cfg); err == nil {
		t.Error("expected error for missing sub-model id")
	}

	cfg = testModelConfig()
	cfg.CategoryLabels = nil
	if _, err := NewModel(cfg); err == nil {
		t.Error("expected error for empty candidate set")
	}
}
