package pipeline

import (
	"github.com/yourusername/podium-pipeline/internal/models"
)

// Splitter partitions encoded rows into the training pool and the held-out
// inference pool by calendar season. Both filters are pure: no shuffling,
// no sampling, no fold logic.
type Splitter struct {
	config Config
}

// NewSplitter creates a splitter from pipeline configuration
func NewSplitter(cfg Config) *Splitter {
	return &Splitter{config: cfg}
}

// Split returns the training rows (seasons before the holdout season) and
// the held-out rows (the holdout season itself). The two partitions are
// disjoint and together cover every input row inside the season window.
func (s *Splitter) Split(rows []models.EncodedResult) (training, holdout []models.EncodedResult) {
	training = make([]models.EncodedResult, 0, len(rows))
	holdout = make([]models.EncodedResult, 0)

	for _, row := range rows {
		switch {
		case row.Season == s.config.HoldoutSeason:
			holdout = append(holdout, row)
		case row.Season >= s.config.SeasonStart && row.Season <= s.config.TrainingSeasonEnd():
			training = append(training, row)
		}
	}

	return training, holdout
}
