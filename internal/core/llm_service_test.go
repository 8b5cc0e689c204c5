package core

import (
	"errors"
	"testing"
)

func TestParseLLMPrediction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Prediction
		wantErr bool
	}{
		{"plain json", `{"label":"joy","score":0.88}`, Prediction{Label: "joy", Score: 0.88}, false},
		{"code fence", "```json\n{\"label\":\"anger\",\"score\":0.5}\n```", Prediction{Label: "anger", Score: 0.5}, false},
		{"label case is normalised", `{"label":" Gratitude ","score":0.4}`, Prediction{Label: "gratitude", Score: 0.4}, false},
		{"score above one is clamped", `{"label":"fear","score":3}`, Prediction{Label: "fear", Score: 1}, false},
		{"negative score is clamped", `{"label":"fear","score":-0.2}`, Prediction{Label: "fear", Score: 0}, false},
		{"unknown label", `{"label":"happy","score":0.9}`, Prediction{}, true},
		{"not json", `joy`, Prediction{}, true},
		{"empty", "  ", Prediction{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLLMPrediction(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrClassifier) {
					t.Errorf("parseLLMPrediction() error = %v, want ErrClassifier", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLLMPrediction() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseLLMPrediction() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEmotionLabels(t *testing.T) {
	if len(EmotionLabels) != 28 {
		t.Errorf("len(EmotionLabels) = %d, want 28", len(EmotionLabels))
	}
	seen := map[string]bool{}
	for _, l := range EmotionLabels {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
	for _, l := range []string{"joy", "anger", "neutral"} {
		if !isEmotionLabel(l) {
			t.Errorf("isEmotionLabel(%q) = false", l)
		}
	}
}
