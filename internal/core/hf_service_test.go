package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHFService_Classify(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantScore float64
	}{
		{
			name:      "nested response",
			body:      `[[{"label":"joy","score":0.91},{"label":"neutral","score":0.05}]]`,
			wantLabel: "joy",
			wantScore: 0.91,
		},
		{
			name:      "flat response",
			body:      `[{"label":"anger","score":0.7}]`,
			wantLabel: "anger",
			wantScore: 0.7,
		},
		{
			name:      "unsorted response picks highest score",
			body:      `[[{"label":"neutral","score":0.2},{"label":"Sadness","score":0.6},{"label":"grief","score":0.2}]]`,
			wantLabel: "sadness",
			wantScore: 0.6,
		},
		{
			name:      "tie keeps first label",
			body:      `[[{"label":"love","score":0.5},{"label":"joy","score":0.5}]]`,
			wantLabel: "love",
			wantScore: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotInputs string
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models/SamLowe/roberta-base-go_emotions" {
					t.Errorf("path = %q", r.URL.Path)
				}
				gotAuth = r.Header.Get("Authorization")
				var req map[string]string
				json.NewDecoder(r.Body).Decode(&req)
				gotInputs = req["inputs"]
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewHFService(HFOptions{Endpoint: srv.URL + "/", Token: "secret"})
			p, err := svc.Classify(context.Background(), "so glad")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if p.Label != tt.wantLabel || p.Score != tt.wantScore {
				t.Errorf("Classify() = %+v, want %s %.2f", p, tt.wantLabel, tt.wantScore)
			}
			if gotInputs != "so glad" {
				t.Errorf("inputs = %q, want %q", gotInputs, "so glad")
			}
			if gotAuth != "Bearer secret" {
				t.Errorf("Authorization = %q", gotAuth)
			}
		})
	}
}

func TestHFService_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"model loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`},
		{"bad request", http.StatusBadRequest, `{"error":"input too long"}`},
		{"unexpected shape", http.StatusOK, `{"error":"weird"}`},
		{"empty list", http.StatusOK, `[]`},
		{"empty nested list", http.StatusOK, `[[]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewHFService(HFOptions{Endpoint: srv.URL})
			_, err := svc.Classify(context.Background(), "hi")
			if !errors.Is(err, ErrClassifier) {
				t.Errorf("Classify() error = %v, want ErrClassifier", err)
			}
		})
	}
}

func TestHFService_Defaults(t *testing.T) {
	svc := NewHFService(HFOptions{})
	if svc.Provider() != "huggingface" {
		t.Errorf("Provider() = %q", svc.Provider())
	}
	if svc.Model() != DefaultHFModel {
		t.Errorf("Model() = %q, want %q", svc.Model(), DefaultHFModel)
	}
	if svc.endpoint != DefaultHFEndpoint {
		t.Errorf("endpoint = %q, want %q", svc.endpoint, DefaultHFEndpoint)
	}
}
