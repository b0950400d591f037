package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-insights/internal/insights"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for narrative summaries.
const DefaultModelName = "gemini-2.5-flash"

// Narrator turns an analysis result into a short prose summary for the
// account holder.
type Narrator interface {
	Narrate(ctx context.Context, res *insights.Result) (string, error)
}

// TemplateNarrator builds the summary from fixed text. It needs no network.
type TemplateNarrator struct{}

// Narrate implements Narrator.
func (TemplateNarrator) Narrate(_ context.Context, res *insights.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("Narrate: nil result")
	}
	return LifeEventSummary(res.Events) + StressSummary(res.Indicators) + "\n" + Overview(res), nil
}

// ContentGenerator is the part of the genai client the narrator uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiNarrator asks Gemini to phrase the already-computed findings. The
// model is given the indicators and events as JSON and never classifies
// transactions itself.
type GeminiNarrator struct {
	Models ContentGenerator
	Model  string
}

// NewGeminiNarrator creates a narrator backed by a new genai client.
func NewGeminiNarrator(ctx context.Context, model string) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiNarrator: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiNarrator{Models: client.Models, Model: model}, nil
}

// Narrate implements Narrator.
func (n *GeminiNarrator) Narrate(ctx context.Context, res *insights.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("Narrate: nil result")
	}
	prompt, err := buildNarrativePrompt(res)
	if err != nil {
		return "", fmt.Errorf("Narrate: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := n.Models.GenerateContent(ctx, n.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Narrate: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Narrate: empty response from model")
	}
	return text, nil
}

func buildNarrativePrompt(res *insights.Result) (string, error) {
	findings, err := json.MarshalIndent(struct {
		RiskScore  int `json:"risk_score"`
		Indicators any `json:"stress_indicators"`
		Events     any `json:"life_events"`
	}{res.RiskScore, res.Indicators, res.Events}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("buildNarrativePrompt: marshal findings: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are writing a short, supportive financial wellbeing note for a bank customer.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use ONLY the findings below. Do not invent transactions, amounts or dates.\n")
	b.WriteString("- Mention high-severity items first.\n")
	b.WriteString("- Keep it under 150 words, plain text, no Markdown.\n")
	b.WriteString("- Be empathetic and practical; end with one concrete next step.\n\n")
	b.WriteString("Findings (JSON):\n")
	b.Write(findings)
	b.WriteString("\n")
	return b.String(), nil
}
