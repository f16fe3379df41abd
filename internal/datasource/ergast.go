package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErgastClient implements DataSource for an Ergast-style historical results API
type ErgastClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// ergastSeasonResponse is the provider payload for a season query
type ergastSeasonResponse struct {
	Season int          `json:"season"`
	Races  []ergastRace `json:"races"`
}

// ergastRace represents one race with its classified results
type ergastRace struct {
	Round   int            `json:"round"`
	Circuit ergastCircuit  `json:"circuit"`
	Date    string         `json:"date"`
	Results []ergastResult `json:"results"`
}

// ergastCircuit identifies the venue
type ergastCircuit struct {
	Name     string `json:"circuitName"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// ergastResult is a single driver's classification
type ergastResult struct {
	Driver      ergastDriver      `json:"driver"`
	Constructor ergastConstructor `json:"constructor"`
	Grid        int               `json:"grid"`
	Position    string            `json:"position"`     // numeric string, empty when unclassified
	PositionTxt string            `json:"positionText"` // "R" for retired, "D" disqualified
	Status      string            `json:"status"`
	Points      string            `json:"points"`
	PitStops    *int              `json:"pitStops,omitempty"`
}

// ergastDriver carries driver identity and birth date
type ergastDriver struct {
	GivenName   string `json:"givenName"`
	FamilyName  string `json:"familyName"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
}

// ergastConstructor carries the constructor identity
type ergastConstructor struct {
	Name string `json:"name"`
}

// NewErgastClient creates a new Ergast-style API client
func NewErgastClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *ErgastClient {
	if baseURL == "" {
		baseURL = "https://api.ergast.example/f1"
	}
	return &ErgastClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the data source name
func (c *ErgastClient) Name() string {
	return "ergast"
}

// IsEnabled returns whether the data source is enabled
func (c *ErgastClient) IsEnabled() bool {
	return c.enabled
}

// FetchSeasonResults retrieves all classified results for a season
func (c *ErgastClient) FetchSeasonResults(ctx context.Context, season int) ([]ResultData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/%d/results.json", c.baseURL, season)
	payload, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	return c.convertSeason(payload)
}

// FetchRaceResults retrieves results for a single race
func (c *ErgastClient) FetchRaceResults(ctx context.Context, season, round int) ([]ResultData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/%d/%d/results.json", c.baseURL, season, round)
	payload, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	return c.convertSeason(payload)
}

// fetch executes a GET request and decodes the season payload
func (c *ErgastClient) fetch(ctx context.Context, url string) (*ergastSeasonResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to fetch results", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		return nil, NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case http.StatusNotFound:
		return nil, NewDataSourceError(c.Name(), ErrCodeNotFound, "no results for query", nil)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload ergastSeasonResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	return &payload, nil
}

// convertSeason flattens the provider payload into result rows
func (c *ErgastClient) convertSeason(payload *ergastSeasonResponse) ([]ResultData, error) {
	var results []ResultData
	for _, race := range payload.Races {
		raceDate, err := time.Parse("2006-01-02", race.Date)
		if err != nil {
			c.logger.WithField("round", race.Round).Warnf("Skipping race with invalid date %q", race.Date)
			continue
		}

		for _, res := range race.Results {
			row, err := c.convertResult(payload.Season, race, raceDate, &res)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"round":  race.Round,
					"driver": res.Driver.FamilyName,
				}).Warnf("Skipping malformed result: %v", err)
				continue
			}
			results = append(results, *row)
		}
	}

	return results, nil
}

// convertResult maps one provider result to a ResultData row
func (c *ErgastClient) convertResult(season int, race ergastRace, raceDate time.Time, res *ergastResult) (*ResultData, error) {
	driverName := res.Driver.GivenName + " " + res.Driver.FamilyName

	var position *int
	if res.Position != "" {
		p, err := strconv.Atoi(res.Position)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", res.Position, err)
		}
		position = &p
	}

	var points *decimal.Decimal
	if res.Points != "" {
		p, err := decimal.NewFromString(res.Points)
		if err != nil {
			return nil, fmt.Errorf("invalid points %q: %w", res.Points, err)
		}
		points = &p
	}

	age, err := driverAgeAt(res.Driver.DateOfBirth, raceDate)
	if err != nil {
		return nil, err
	}

	return &ResultData{
		SourceID:    fmt.Sprintf("%d-%d-%s", season, race.Round, res.Driver.FamilyName),
		Season:      season,
		Round:       race.Round,
		Circuit:     race.Circuit.Name,
		Driver:      driverName,
		Constructor: res.Constructor.Name,
		Grid:        res.Grid,
		Position:    position,
		Status:      res.Status,
		PitStops:    res.PitStops,
		DriverAge:   age,
		Points:      points,
	}, nil
}

// driverAgeAt computes a driver's age in whole years at the race date
func driverAgeAt(dateOfBirth string, raceDate time.Time) (int, error) {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return 0, fmt.Errorf("invalid date of birth %q: %w", dateOfBirth, err)
	}

	age := raceDate.Year() - dob.Year()
	if raceDate.YearDay() < dob.YearDay() {
		age--
	}
	if age < 0 {
		return 0, fmt.Errorf("date of birth %q is after race date", dateOfBirth)
	}
	return age, nil
}
