package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Answerer is the external answer-generation collaborator. The core hands
// it the query and the assembled context block and passes its output
// through untouched; persona is pure configuration.
type Answerer interface {
	Generate(ctx context.Context, query, contextBlock, persona string) (string, error)
}

type geminiAnswerer struct {
	client *genai.Client
	model  string
}

func NewGeminiAnswerer(client *genai.Client, model string) Answerer {
	return &geminiAnswerer{client: client, model: model}
}

func (g *geminiAnswerer) Generate(ctx context.Context, query, contextBlock, persona string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(answerPrompt(query, contextBlock)),
		&genai.GenerateContentConfig{
			SystemInstruction: systemInstruction(persona),
			Temperature:       genai.Ptr(float32(0)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	answer := strings.TrimSpace(result.Text())
	if answer == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return answer, nil
}
