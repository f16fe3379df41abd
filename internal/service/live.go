package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/datasource"
)

// LiveTimingService tracks provisional race classifications from the
// live-timing stream. Provisional rows never enter the results table; the
// historical provider supplies the authoritative result after the race and
// ingestion deduplication keeps the two paths from colliding.
type LiveTimingService struct {
	stream   *datasource.StreamClient
	logger   *logrus.Logger
	mu       sync.RWMutex
	season   int
	round    int
	standing map[string]datasource.ClassificationUpdate // keyed by driver
	retired  int
	updates  int
}

// NewLiveTimingService creates a live timing service over a stream client
func NewLiveTimingService(stream *datasource.StreamClient, logger *logrus.Logger) *LiveTimingService {
	return &LiveTimingService{
		stream:   stream,
		logger:   logger,
		standing: make(map[string]datasource.ClassificationUpdate),
	}
}

// Start connects to the live timing feed and subscribes to one race
func (s *LiveTimingService) Start(ctx context.Context, season, round int) error {
	s.mu.Lock()
	s.season = season
	s.round = round
	s.standing = make(map[string]datasource.ClassificationUpdate)
	s.retired = 0
	s.updates = 0
	s.mu.Unlock()

	s.stream.AddHandler(s.handleUpdate)

	if err := s.stream.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect live timing: %w", err)
	}
	if err := s.stream.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate live timing: %w", err)
	}
	if err := s.stream.SubscribeToRace(ctx, season, round); err != nil {
		return fmt.Errorf("failed to subscribe to race: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"season": season,
		"round":  round,
	}).Info("Live timing started")

	return nil
}

// handleUpdate folds a classification update into the provisional standing
func (s *LiveTimingService) handleUpdate(update datasource.ClassificationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Season != s.season || update.Round != s.round {
		return nil
	}

	previous, seen := s.standing[update.Driver]
	s.standing[update.Driver] = update
	s.updates++
	if update.Retired && (!seen || !previous.Retired) {
		s.retired++
	}

	return nil
}

// Standing returns the provisional classification ordered by position, with
// retired drivers last.
func (s *LiveTimingService) Standing() []datasource.ClassificationUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]datasource.ClassificationUpdate, 0, len(s.standing))
	for _, update := range s.standing {
		rows = append(rows, update)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Retired != rows[j].Retired {
			return !rows[i].Retired
		}
		return rows[i].Position < rows[j].Position
	})
	return rows
}

// Stats returns update and retirement counts for the tracked race
func (s *LiveTimingService) Stats() (updates, retired int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates, s.retired
}

// Healthy reports whether the stream has delivered a message recently
func (s *LiveTimingService) Healthy(staleAfter time.Duration) bool {
	if !s.stream.IsConnected() {
		return false
	}
	return time.Since(s.stream.LastMessageTime()) < staleAfter
}

// Stop closes the stream connection
func (s *LiveTimingService) Stop() error {
	s.logger.Info("Live timing stopped")
	return s.stream.Close()
}
