package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"advisor-engine/internal/config"
	"advisor-engine/internal/logging"
)

// OpenAIParser extracts structured answers with a chat completion forced
// into JSON mode
type OpenAIParser struct {
	client  *openai.Client
	model   string
	timeout config.NLUConfig
	logger  logging.Logger
}

// NewOpenAIParser creates the production parser. The API key is required;
// a missing key is an initialization failure, not a runtime fallback.
func NewOpenAIParser(cfg config.NLUConfig, logger logging.Logger) (*OpenAIParser, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is required for the NLU parser")
	}
	return &OpenAIParser{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		model:   cfg.Model,
		timeout: cfg,
		logger:  logger.WithComponent("nlu"),
	}, nil
}

// Parse sends the text and schema to the model and decodes the JSON reply.
// Any transport or decoding failure is returned to the caller unretried.
func (p *OpenAIParser) Parse(ctx context.Context, freeText string, schema Schema) (Result, error) {
	if strings.TrimSpace(freeText) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout.RequestTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildSystemPrompt(schema),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: freeText,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("nlu completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("nlu completion returned no choices")
	}

	var result Result
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		p.logger.Warn("NLU reply was not valid JSON", "schema", schema.Name, "error", err)
		return nil, fmt.Errorf("decode nlu reply: %w", err)
	}
	return result, nil
}

// buildSystemPrompt renders the schema as extraction instructions
func buildSystemPrompt(schema Schema) string {
	var b strings.Builder
	b.WriteString("Extract structured data from the user's answer. ")
	b.WriteString(schema.Description)
	b.WriteString("\nReply with a single JSON object containing only these fields, ")
	b.WriteString("omitting any field the answer does not cover:\n")
	for _, f := range schema.Fields {
		fmt.Fprintf(&b, "- %q (%s): %s\n", f.Name, f.Type, f.Description)
	}
	return b.String()
}
