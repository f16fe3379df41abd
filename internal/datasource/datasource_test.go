package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/config"
)

const seasonPayload = `{
	"season": 2020,
	"races": [
		{
			"round": 1,
			"circuit": {"circuitName": "Red Bull Ring", "locality": "Spielberg", "country": "Austria"},
			"date": "2020-07-05",
			"results": [
				{
					"driver": {"givenName": "Valtteri", "familyName": "Bottas", "dateOfBirth": "1989-08-28"},
					"constructor": {"name": "Mercedes"},
					"grid": 1,
					"position": "1",
					"positionText": "1",
					"status": "Finished",
					"points": "25",
					"pitStops": 1
				},
				{
					"driver": {"givenName": "Max", "familyName": "Verstappen", "dateOfBirth": "1997-09-30"},
					"constructor": {"name": "Red Bull"},
					"grid": 2,
					"position": "",
					"positionText": "R",
					"status": "Electronics",
					"points": "0"
				}
			]
		}
	]
}`

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestErgastClient(t *testing.T, handler http.HandlerFunc) *ErgastClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = 1000
	httpCfg.MaxRetries = 0
	httpClient := NewRateLimitedHTTPClient(httpCfg, newTestLogger())

	// Point the client at the test server over plain HTTP
	return NewErgastClient(httpClient, server.URL, "test-key", true, newTestLogger())
}

// TestErgastFetchSeasonResults tests parsing of a season results payload
func TestErgastFetchSeasonResults(t *testing.T) {
	client := newTestErgastClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/2020/results.json"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seasonPayload))
	})

	results, err := client.FetchSeasonResults(context.Background(), 2020)
	require.NoError(t, err)
	require.Len(t, results, 2)

	bottas := results[0]
	assert.Equal(t, "Valtteri Bottas", bottas.Driver)
	assert.Equal(t, "Mercedes", bottas.Constructor)
	assert.Equal(t, "Red Bull Ring", bottas.Circuit)
	require.NotNil(t, bottas.Position)
	assert.Equal(t, 1, *bottas.Position)
	require.NotNil(t, bottas.PitStops)
	assert.Equal(t, 1, *bottas.PitStops)
	assert.True(t, bottas.Finished())
	// Born 1989-08-28, race on 2020-07-05
	assert.Equal(t, 30, bottas.DriverAge)

	verstappen := results[1]
	assert.Nil(t, verstappen.Position)
	assert.Nil(t, verstappen.PitStops)
	assert.False(t, verstappen.Finished())
}

// TestErgastDisabledSource tests that a disabled source refuses to fetch
func TestErgastDisabledSource(t *testing.T) {
	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), newTestLogger())
	client := NewErgastClient(httpClient, "", "", false, newTestLogger())

	_, err := client.FetchSeasonResults(context.Background(), 2020)
	require.Error(t, err)

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "ergast", dsErr.Source)
}

// TestErgastAuthenticationFailure tests handling of a 401 response
func TestErgastAuthenticationFailure(t *testing.T) {
	client := newTestErgastClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchSeasonResults(context.Background(), 2020)
	require.Error(t, err)

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, ErrCodeAuthenticationFailed, dsErr.Code)
}

// TestResultDataFinished tests classification of finishing statuses
func TestResultDataFinished(t *testing.T) {
	tests := []struct {
		status   string
		finished bool
	}{
		{"Finished", true},
		{"+1 Lap", true},
		{"+2 Laps", true},
		{"Engine", false},
		{"Collision", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := &ResultData{Status: tt.status}
			assert.Equal(t, tt.finished, r.Finished())
		})
	}
}

// TestDriverAgeAt tests whole-year age computation
func TestDriverAgeAt(t *testing.T) {
	raceDate := time.Date(2020, 7, 5, 0, 0, 0, 0, time.UTC)

	age, err := driverAgeAt("1989-08-28", raceDate)
	require.NoError(t, err)
	assert.Equal(t, 30, age)

	age, err = driverAgeAt("1989-07-05", raceDate)
	require.NoError(t, err)
	assert.Equal(t, 31, age)

	_, err = driverAgeAt("not-a-date", raceDate)
	assert.Error(t, err)
}

// TestFactoryUnknownSource tests factory rejection of unknown providers
func TestFactoryUnknownSource(t *testing.T) {
	factory := NewFactory(newTestLogger())

	_, err := factory.NewDataSource(config.DataSourceConfig{Name: "timing_tower", Enabled: true})
	assert.Error(t, err)
}

// TestFactorySkipsDisabledSources tests that disabled sources are not built
func TestFactorySkipsDisabledSources(t *testing.T) {
	factory := NewFactory(newTestLogger())

	sources, err := factory.NewDataSources(config.IngestionConfig{
		Sources: []config.DataSourceConfig{
			{Name: "ergast", Enabled: true},
			{Name: "ergast", Enabled: false},
		},
	})
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}
