package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airhealth/internal/config"
	apperrors "airhealth/internal/errors"
	"airhealth/pkg/contracts/domain"
)

func testSources(airURL, datasusURL string) config.SourcesConfig {
	return config.SourcesConfig{
		AirQualityURL:  airURL,
		DatasusURL:     datasusURL,
		Stations:       []int{101, 102},
		FilterCity:     "João Pessoa",
		FilterICDFrom:  "J00",
		FilterICDTo:    "J99",
		Timeout:        5 * time.Second,
		RequestsPerSec: 100,
	}
}

func TestClient_AirQuality_FansOutPerStation(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]string)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		station := r.URL.Query().Get("station")
		mu.Lock()
		seen[station] = r.URL.Query().Get("month")
		mu.Unlock()

		resp := map[string]interface{}{
			"readings": []map[string]interface{}{
				{"timestamp": "2024-01-01", "pm25": 10.0},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(testSources(srv.URL, srv.URL), nil)
	frame, err := c.AirQuality(context.Background(), "2024-01")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"101": "2024-01", "102": "2024-01"}, seen)
	require.Equal(t, 2, frame.Len())

	// Columns are the sorted key union, including the injected station column.
	assert.Equal(t, []string{"pm25", "station", "timestamp"}, frame.Columns)

	idx := frame.ColumnIndex("station")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, domain.KindNumber, frame.Rows[0][idx].Kind)
	assert.Equal(t, float64(101), frame.Rows[0][idx].Num)
	assert.Equal(t, float64(102), frame.Rows[1][idx].Num)
}

func TestClient_HospitalizationsFiltered_SendsFilterParams(t *testing.T) {
	var query map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"month":     r.URL.Query().Get("month"),
			"city":      r.URL.Query().Get("city"),
			"cid_start": r.URL.Query().Get("cid_start"),
			"cid_end":   r.URL.Query().Get("cid_end"),
		}
		fmt.Fprint(w, `{"result":[{"admission_date":"2024-01-05","cid":"J18"}]}`)
	}))
	defer srv.Close()

	c := NewClient(testSources(srv.URL, srv.URL), nil)
	frame, err := c.HospitalizationsFiltered(context.Background(), "2024-01")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"month":     "2024-01",
		"city":      "João Pessoa",
		"cid_start": "J00",
		"cid_end":   "J99",
	}, query)
	assert.Equal(t, 1, frame.Len())
	assert.Equal(t, []string{"admission_date", "cid"}, frame.Columns)
}

func TestClient_Hospitalizations_OmitsFilterParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("city"))
		assert.False(t, r.URL.Query().Has("cid_start"))
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := NewClient(testSources(srv.URL, srv.URL), nil)
	frame, err := c.Hospitalizations(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Len())
}

func TestClient_GetJSON_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testSources(srv.URL, srv.URL), nil)
	_, err := c.Hospitalizations(context.Background(), "2024-01")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNetwork, appErr.Type)
	assert.Equal(t, http.StatusBadGateway, appErr.Context["status_code"])
}

func TestClient_GetJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": not-json`)
	}))
	defer srv.Close()

	c := NewClient(testSources(srv.URL, srv.URL), nil)
	_, err := c.Hospitalizations(context.Background(), "2024-01")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestValueFromJSON(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want domain.Value
	}{
		{"nil is missing", nil, domain.Missing()},
		{"empty string is missing", "", domain.Missing()},
		{"number", 12.5, domain.Number(12.5)},
		{"text", "J18", domain.Text("J18")},
		{"bool becomes text", true, domain.Text("true")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueFromJSON(tt.in))
		})
	}
}
