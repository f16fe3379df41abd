package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/datasource"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// DataNormalizer normalizes result rows from various providers to standard form
type DataNormalizer struct {
	circuitNameMap     map[string]string // Maps provider circuit names to canonical names
	constructorRenames map[string]string // Maps superseded constructor identities to current ones
	logger             *logrus.Logger
}

// NewDataNormalizer creates a new data normalizer. constructorRenames comes
// from configuration so the table can change without touching this code.
func NewDataNormalizer(constructorRenames map[string]string, logger *logrus.Logger) *DataNormalizer {
	renames := make(map[string]string, len(constructorRenames))
	for from, to := range constructorRenames {
		renames[from] = to
	}
	return &DataNormalizer{
		circuitNameMap:     buildCircuitNameMap(),
		constructorRenames: renames,
		logger:             logger,
	}
}

// NormalizeResult converts ResultData from any source to the internal model
func (n *DataNormalizer) NormalizeResult(source *datasource.ResultData) (*models.RaceResult, error) {
	if source == nil {
		return nil, fmt.Errorf("source result is nil")
	}

	if source.Season <= 0 || source.Round <= 0 {
		return nil, fmt.Errorf("result has invalid race reference %d/%d", source.Season, source.Round)
	}

	points := decimal.Zero
	if source.Points != nil {
		points = *source.Points
	}

	result := &models.RaceResult{
		ID:          uuid.New(),
		Season:      source.Season,
		Round:       source.Round,
		Circuit:     n.normalizeCircuitName(source.Circuit),
		Driver:      sanitizeName(source.Driver),
		Constructor: n.RemapConstructor(sanitizeName(source.Constructor)),
		Grid:        source.Grid,
		Position:    source.Position,
		DNF:         !source.Finished(),
		PitStops:    source.PitStops,
		DriverAge:   source.DriverAge,
		Points:      points,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	return result, nil
}

// RemapConstructor maps a superseded constructor identity to its current one.
// Unmapped names pass through unchanged so ingestion never stalls on a new
// team name. The table is idempotent: applying it twice yields the same
// result as applying it once.
func (n *DataNormalizer) RemapConstructor(constructor string) string {
	if constructor == "" {
		return ""
	}

	if current, ok := n.constructorRenames[constructor]; ok {
		return current
	}

	return constructor
}

// normalizeCircuitName converts provider-specific circuit names to canonical format
func (n *DataNormalizer) normalizeCircuitName(circuit string) string {
	if circuit == "" {
		return ""
	}

	// Try exact match first
	if canonical, ok := n.circuitNameMap[strings.ToUpper(circuit)]; ok {
		return canonical
	}

	return strings.TrimSpace(circuit)
}

// NormalizeRaceDate ensures a race date is in UTC
func (n *DataNormalizer) NormalizeRaceDate(t time.Time) time.Time {
	return t.UTC()
}

// sanitizeName removes extra whitespace from names
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// buildCircuitNameMap returns mapping of circuit name variations to canonical names
func buildCircuitNameMap() map[string]string {
	return map[string]string{
		"RED BULL RING":                  "Red Bull Ring",
		"A1-RING":                        "Red Bull Ring",
		"SPIELBERG":                      "Red Bull Ring",
		"SILVERSTONE":                    "Silverstone Circuit",
		"SILVERSTONE CIRCUIT":            "Silverstone Circuit",
		"MONZA":                          "Autodromo Nazionale di Monza",
		"AUTODROMO NAZIONALE MONZA":      "Autodromo Nazionale di Monza",
		"AUTODROMO NAZIONALE DI MONZA":   "Autodromo Nazionale di Monza",
		"SPA":                            "Circuit de Spa-Francorchamps",
		"SPA-FRANCORCHAMPS":              "Circuit de Spa-Francorchamps",
		"CIRCUIT DE SPA-FRANCORCHAMPS":   "Circuit de Spa-Francorchamps",
		"MONACO":                         "Circuit de Monaco",
		"CIRCUIT DE MONACO":              "Circuit de Monaco",
		"MONTE CARLO":                    "Circuit de Monaco",
		"HUNGARORING":                    "Hungaroring",
		"INTERLAGOS":                     "Autodromo Jose Carlos Pace",
		"AUTODROMO JOSE CARLOS PACE":     "Autodromo Jose Carlos Pace",
		"SUZUKA":                         "Suzuka Circuit",
		"SUZUKA CIRCUIT":                 "Suzuka Circuit",
		"CATALUNYA":                      "Circuit de Barcelona-Catalunya",
		"CIRCUIT DE CATALUNYA":           "Circuit de Barcelona-Catalunya",
		"CIRCUIT DE BARCELONA-CATALUNYA": "Circuit de Barcelona-Catalunya",
		"ALBERT PARK":                    "Albert Park Grand Prix Circuit",
		"MELBOURNE":                      "Albert Park Grand Prix Circuit",
		"BAKU":                           "Baku City Circuit",
		"BAKU CITY CIRCUIT":              "Baku City Circuit",
		"MARINA BAY":                     "Marina Bay Street Circuit",
		"MARINA BAY STREET CIRCUIT":      "Marina Bay Street Circuit",
		"YAS MARINA":                     "Yas Marina Circuit",
		"YAS MARINA CIRCUIT":             "Yas Marina Circuit",
		"CIRCUIT OF THE AMERICAS":        "Circuit of the Americas",
		"COTA":                           "Circuit of the Americas",
		"NURBURGRING":                    "Nurburgring",
		"HOCKENHEIM":                     "Hockenheimring",
		"HOCKENHEIMRING":                 "Hockenheimring",
		"PAUL RICARD":                    "Circuit Paul Ricard",
		"CIRCUIT PAUL RICARD":            "Circuit Paul Ricard",
		"SOCHI":                          "Sochi Autodrom",
		"SOCHI AUTODROM":                 "Sochi Autodrom",
		"SHANGHAI":                       "Shanghai International Circuit",
		"SHANGHAI INTERNATIONAL CIRCUIT": "Shanghai International Circuit",
		"SAKHIR":                         "Bahrain International Circuit",
		"BAHRAIN INTERNATIONAL CIRCUIT":  "Bahrain International Circuit",
		"GILLES VILLENEUVE":              "Circuit Gilles Villeneuve",
		"CIRCUIT GILLES VILLENEUVE":      "Circuit Gilles Villeneuve",
		"ZANDVOORT":                      "Circuit Zandvoort",
		"CIRCUIT ZANDVOORT":              "Circuit Zandvoort",
	}
}
