package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gwi.com/chatmood/internal/chatlog"
	"gwi.com/chatmood/internal/metrics"
	"gwi.com/chatmood/internal/store"
)

// AnalysisStore persists finished analyses. *store.SQLiteStore satisfies it.
type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, a *store.Analysis) error
	GetAnalysis(ctx context.Context, id string) (*store.Analysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]store.AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, id string) (bool, error)
}

// ErrNoStore is returned by history operations when persistence is off.
var ErrNoStore = errors.New("analysis history is not enabled")

type AnalysisService struct {
	classifier Classifier
	dbStore    AnalysisStore // nil disables persistence
	logger     zerolog.Logger

	// mu keeps runs from overlapping on the shared classifier.
	mu sync.Mutex
}

func NewAnalysisService(classifier Classifier, db AnalysisStore, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		dbStore:    db,
		logger:     logger,
	}
}

// HistoryEnabled reports whether analyses are persisted.
func (s *AnalysisService) HistoryEnabled() bool {
	return s.dbStore != nil
}

// Analyze extracts the messages of an uploaded transcript, classifies each
// one in order, and tallies the labels. The first classifier error aborts
// the run and nothing is stored. A transcript with no matching lines yields
// an analysis with no results.
func (s *AnalysisService) Analyze(ctx context.Context, filename string, data []byte) (*store.Analysis, error) {
	messages, err := chatlog.ExtractMessages(data)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid_encoding").Inc()
		return nil, fmt.Errorf("failed to extract messages from %s: %w", filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With().Str("filename", filename).Int("messages", len(messages)).Logger()
	log.Info().Msg("analysis started")
	start := time.Now()

	results, err := s.ClassifyMessages(ctx, messages)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("classifier_error").Inc()
		log.Error().Err(err).Msg("analysis aborted")
		return nil, err
	}

	analysis := &store.Analysis{
		Filename:  filename,
		Provider:  s.classifier.Provider(),
		Model:     s.classifier.Model(),
		CreatedAt: time.Now().UTC(),
		Results:   results,
		Counts:    Tally(results),
	}

	if s.dbStore != nil {
		if err := s.dbStore.CreateAnalysis(ctx, analysis); err != nil {
			metrics.AnalysesTotal.WithLabelValues("store_error").Inc()
			return nil, fmt.Errorf("failed to store analysis: %w", err)
		}
	}

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	log.Info().Str("analysis_id", analysis.ID).Dur("took", time.Since(start)).Msg("analysis finished")
	return analysis, nil
}

// ClassifyMessages runs the classifier once per message, sequentially,
// and returns results in input order.
func (s *AnalysisService) ClassifyMessages(ctx context.Context, messages []string) ([]store.SentimentResult, error) {
	results := make([]store.SentimentResult, 0, len(messages))
	for i, msg := range messages {
		start := time.Now()
		p, err := s.classifier.Classify(ctx, msg)
		metrics.ClassifierLatency.WithLabelValues(s.classifier.Provider()).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("failed to classify message %d: %w", i+1, err)
		}
		metrics.MessagesClassified.Inc()
		metrics.LabelsAssigned.WithLabelValues(p.Label).Inc()

		results = append(results, store.SentimentResult{
			Position: i,
			Message:  msg,
			Label:    p.Label,
			Score:    p.Score,
		})
	}
	return results, nil
}

// Tally counts labels, keeping the order in which labels were first seen.
func Tally(results []store.SentimentResult) []store.LabelCount {
	counts := []store.LabelCount{}
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.Label]
		if !ok {
			index[r.Label] = len(counts)
			counts = append(counts, store.LabelCount{Label: r.Label, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// GetAnalysis loads a stored analysis and recomputes its label counts.
// Returns nil, nil when the id is unknown.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*store.Analysis, error) {
	if s.dbStore == nil {
		return nil, ErrNoStore
	}
	a, err := s.dbStore.GetAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if a == nil {
		return nil, nil // Not found
	}
	a.Counts = Tally(a.Results)
	return a, nil
}

func (s *AnalysisService) ListAnalyses(ctx context.Context, limit int) ([]store.AnalysisSummary, error) {
	if s.dbStore == nil {
		return nil, ErrNoStore
	}
	return s.dbStore.ListAnalyses(ctx, limit)
}

func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) (bool, error) {
	if s.dbStore == nil {
		return false, ErrNoStore
	}
	return s.dbStore.DeleteAnalysis(ctx, id)
}
