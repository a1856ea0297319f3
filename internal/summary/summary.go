// Package summary generates book summaries through the Gemini API.
//
// All failures surface as a generic wrapped error; the configured API key
// is scrubbed from error text before it leaves this package.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrGeneration indicates the AI service failed to produce a summary.
// Callers treat every generation failure uniformly and never retry here.
var ErrGeneration = errors.New("error generating summary")

// Redacted replaces the API key in any error text.
const Redacted = "[REDACTED]"

const promptTemplate = `Please provide a concise but comprehensive summary of the book %q by %s.
Include the main themes, key plot points (if fiction), and the overall message or takeaways.
Keep it to about 200-300 words so it can serve as a memory refresher.`

// modelCaller is the slice of the genai client we use; injected in tests.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newModelCaller = func(ctx context.Context, apiKey string) (modelCaller, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Generator produces book summaries from title and author.
type Generator struct {
	apiKey string
	model  string
	caller modelCaller
}

// NewGenerator creates a generator for the given model. The API key must
// already be validated; an empty key is refused here as a last line of
// defense.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("AI API key not configured")
	}
	caller, err := newModelCaller(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("creating AI client: %w", redactErr(err, apiKey))
	}
	return &Generator{apiKey: apiKey, model: model, caller: caller}, nil
}

// Generate returns a 200-300 word summary for the book. Failures wrap
// ErrGeneration and never contain the API key.
func (g *Generator) Generate(ctx context.Context, title, author string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, title, author)

	resp, err := g.caller.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, redactErr(err, g.apiKey))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: no content generated from the AI model", ErrGeneration)
	}
	return text, nil
}

// redactErr scrubs the API key from error text. Provider SDK errors can
// echo request URLs that carry the key as a query parameter.
func redactErr(err error, apiKey string) error {
	if err == nil || apiKey == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, apiKey, Redacted))
}
