package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash-latest"

	classifySystemInstruction = "You are an emotion classifier for chat messages. " +
		"Assign exactly one emotion label from the allowed list to the message you are given, " +
		"and a confidence score between 0 and 1 for that label. " +
		"Use \"neutral\" when no emotion is expressed. Never explain your answer."
)

// LLMService classifies text with a Gemini model constrained to JSON output.
type LLMService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger zerolog.Logger
}

func NewLLMService(ctx context.Context, apiKey, modelName string, logger zerolog.Logger) (*LLMService, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(classifySystemInstruction)},
	}

	temp := float32(0)
	maxTokens := int32(64)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens:  &maxTokens,
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"label": {Type: genai.TypeString, Enum: EmotionLabels},
				"score": {Type: genai.TypeNumber},
			},
			Required: []string{"label", "score"},
		},
	}

	return &LLMService{
		client: client,
		model:  model,
		name:   modelName,
		logger: logger,
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Error().Err(err).Msg("error closing GenAI client")
		} else {
			s.logger.Debug().Msg("GenAI client closed")
		}
	}
}

func (s *LLMService) Provider() string { return "gemini" }

func (s *LLMService) Model() string { return s.name }

func (s *LLMService) Classify(ctx context.Context, text string) (Prediction, error) {
	prompt := fmt.Sprintf("Allowed labels: %s\n\nMessage:\n%s", strings.Join(EmotionLabels, ", "), text)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: gemini request failed: %v", ErrClassifier, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Prediction{}, fmt.Errorf("%w: gemini returned no candidates", ErrClassifier)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.logger.Debug().Str("part_type", fmt.Sprintf("%T", part)).Msg("ignoring non-text gemini part")
		}
	}

	return parseLLMPrediction(responseText.String())
}

// parseLLMPrediction decodes the model's JSON answer, tolerating a
// surrounding markdown code fence.
func parseLLMPrediction(raw string) (Prediction, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Prediction{}, fmt.Errorf("%w: gemini returned an empty answer", ErrClassifier)
	}

	var p Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to decode gemini answer %.100q: %v", ErrClassifier, raw, err)
	}
	p.Label = normalizeLabel(p.Label)
	if !isEmotionLabel(p.Label) {
		return Prediction{}, fmt.Errorf("%w: gemini returned unknown label %q", ErrClassifier, p.Label)
	}
	p.Score = clampScore(p.Score)
	return p, nil
}
