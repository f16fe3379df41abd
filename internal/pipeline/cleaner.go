package pipeline

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// Cleaner prepares raw race results for encoding: it filters to the season
// window, fills missing pit-stop counts, remaps superseded constructor
// identities, computes reliability ratios and attaches active flags.
type Cleaner struct {
	config Config
	logger *logrus.Logger

	activeDrivers      map[string]bool
	activeConstructors map[string]bool
}

// NewCleaner creates a cleaner from pipeline configuration
func NewCleaner(cfg Config, logger *logrus.Logger) *Cleaner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cleaner{
		config:             cfg,
		logger:             logger,
		activeDrivers:      toSet(cfg.ActiveDrivers),
		activeConstructors: toSet(cfg.ActiveConstructors),
	}
}

// Clean transforms raw results into cleaned rows. No rows are dropped
// beyond the inclusive season filter; inactive entities are only flagged
// here and filtered later by the encoder.
func (c *Cleaner) Clean(results []*models.RaceResult) []models.CleanedResult {
	inWindow := make([]*models.RaceResult, 0, len(results))
	for _, r := range results {
		if r.Season < c.config.SeasonStart || r.Season > c.config.SeasonEnd {
			continue
		}
		inWindow = append(inWindow, r)
	}

	driverStats := newReliabilityStats()
	constructorStats := newReliabilityStats()
	for _, r := range inWindow {
		driverStats.record(r.Driver, r.DNF)
		constructorStats.record(c.remapConstructor(r.Constructor), r.DNF)
	}

	cleaned := make([]models.CleanedResult, 0, len(inWindow))
	for _, r := range inWindow {
		constructor := c.remapConstructor(r.Constructor)

		row := models.CleanedResult{
			Season:                 r.Season,
			Circuit:                r.Circuit,
			Driver:                 r.Driver,
			Constructor:            constructor,
			Grid:                   r.Grid,
			Position:               positionOrZero(r.Position),
			DNF:                    r.DNF,
			PitStops:               pitStopsOrZero(r.PitStops),
			DriverAge:              r.DriverAge,
			DriverConfidence:       driverStats.ratio(r.Driver),
			ConstructorReliability: constructorStats.ratio(constructor),
			ActiveDriver:           c.activeDrivers[r.Driver],
			ActiveConstructor:      c.activeConstructors[constructor],
		}
		cleaned = append(cleaned, row)
	}

	c.logger.WithFields(logrus.Fields{
		"input":   len(results),
		"cleaned": len(cleaned),
		"window":  [2]int{c.config.SeasonStart, c.config.SeasonEnd},
	}).Debug("Cleaning stage complete")

	return cleaned
}

// remapConstructor maps a superseded constructor identity to its current
// one. Unmapped names pass through unchanged; the table is idempotent.
func (c *Cleaner) remapConstructor(constructor string) string {
	if current, ok := c.config.ConstructorRenames[constructor]; ok {
		return current
	}
	return constructor
}

// reliabilityStats accumulates per-entity DNF counts
type reliabilityStats struct {
	races map[string]int
	dnfs  map[string]int
}

func newReliabilityStats() *reliabilityStats {
	return &reliabilityStats{
		races: make(map[string]int),
		dnfs:  make(map[string]int),
	}
}

func (s *reliabilityStats) record(key string, dnf bool) {
	s.races[key]++
	if dnf {
		s.dnfs[key]++
	}
}

// ratio returns 1 minus the DNF rate. An entity with zero recorded races
// gets 0.0 rather than a divide-by-zero.
func (s *reliabilityStats) ratio(key string) float64 {
	races := s.races[key]
	if races == 0 {
		return 0.0
	}
	return 1.0 - float64(s.dnfs[key])/float64(races)
}

func positionOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func pitStopsOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
