package chat

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// systemPrompt fixes the assistant's persona. It is identical for every
// message and the only context sent alongside the user's text.
const systemPrompt = `You are a professional Deployment Architect for 'DigitalEmployee.me'. ` +
	`We deploy digital employees (AI agents) for seven sectors: Healthcare, ` +
	`Professional Services (including CAs and tax consultants), Education, ` +
	`Food & Hospitality, Personal Care, Retail, and Home Services. ` +
	`Be direct and ROI-focused. Answer in at most 2 sentences and close by ` +
	`suggesting the visitor book a Neural Audit.`

const defaultTemperature = 0.7

// GeminiGenerator produces replies with a single non-streaming model call.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

func (g *GeminiGenerator) Generate(ctx context.Context, message string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
