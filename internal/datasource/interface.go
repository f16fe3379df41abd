package datasource

import (
	"context"

	"github.com/shopspring/decimal"
)

// DataSource defines the interface for fetching race results from external providers
type DataSource interface {
	// FetchSeasonResults retrieves all classified results for a season
	FetchSeasonResults(ctx context.Context, season int) ([]ResultData, error)

	// FetchRaceResults retrieves results for a single race
	FetchRaceResults(ctx context.Context, season, round int) ([]ResultData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// ResultData represents one driver's race result as reported by a provider
type ResultData struct {
	SourceID    string           `json:"source_id"`    // Provider's unique result ID
	Season      int              `json:"season"`       // Championship year
	Round       int              `json:"round"`        // Race number within the season
	Circuit     string           `json:"circuit"`      // Circuit name as reported by the provider
	Driver      string           `json:"driver"`       // Driver full name
	Constructor string           `json:"constructor"`  // Constructor name as reported by the provider
	Grid        int              `json:"grid"`         // Starting grid position (0 = pit lane)
	Position    *int             `json:"position"`     // Final classified position, nil if unclassified
	Status      string           `json:"status"`       // Finishing status (e.g. "Finished", "Engine", "+1 Lap")
	PitStops    *int             `json:"pit_stops"`    // Pit stop count, nil when the provider omits pit data
	DriverAge   int              `json:"driver_age"`   // Driver age at race date, in years
	Points      *decimal.Decimal `json:"points"`       // Championship points awarded
}

// Finished reports whether the status counts as a classified finish.
// Lapped cars ("+N Lap(s)") are classified finishers.
func (r *ResultData) Finished() bool {
	if r.Status == "Finished" {
		return true
	}
	return len(r.Status) > 0 && r.Status[0] == '+'
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{Source: source, Code: code, Message: message, Err: err}
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeInvalidData          = "invalid_data"
)

const dataSourceDisabledMsg = "data source is disabled"
