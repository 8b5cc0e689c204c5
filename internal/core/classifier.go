package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrClassifier wraps every failure coming out of a classifier backend.
var ErrClassifier = errors.New("classifier failed")

// Prediction is the single top label a classifier assigns to a text.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier labels one text with one emotion. Implementations must be
// safe to call repeatedly from a single goroutine.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	// Provider and Model identify the backend in stored analyses.
	Provider() string
	Model() string
}

// EmotionLabels is the go_emotions label vocabulary.
var EmotionLabels = []string{
	"admiration", "amusement", "anger", "annoyance", "approval", "caring",
	"confusion", "curiosity", "desire", "disappointment", "disapproval",
	"disgust", "embarrassment", "excitement", "fear", "gratitude", "grief",
	"joy", "love", "nervousness", "optimism", "pride", "realization",
	"relief", "remorse", "sadness", "surprise", "neutral",
}

func isEmotionLabel(label string) bool {
	for _, l := range EmotionLabels {
		if l == label {
			return true
		}
	}
	return false
}

// topPrediction picks the highest score; on a tie the earlier entry wins.
func topPrediction(preds []Prediction) (Prediction, error) {
	if len(preds) == 0 {
		return Prediction{}, fmt.Errorf("%w: no labels returned", ErrClassifier)
	}
	best := preds[0]
	for _, p := range preds[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
