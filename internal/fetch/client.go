package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"airhealth/internal/config"
	apperrors "airhealth/internal/errors"
	"airhealth/pkg/contracts/domain"
)

// Client is the raw data source collaborator: it retrieves untyped
// tabular record sets from the municipal air-quality API and the
// DATASUS admissions API. Transport failures propagate as network
// errors; there is no retry or backoff here.
type Client struct {
	cfg     config.SourcesConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a new source client. Requests across all endpoints
// share one rate limiter so station fan-out cannot hammer the remote.
func NewClient(cfg config.SourcesConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// airQualityResponse mirrors the municipal API payload.
type airQualityResponse struct {
	Readings []map[string]interface{} `json:"readings"`
}

// datasusResponse mirrors the DATASUS API payload.
type datasusResponse struct {
	Result []map[string]interface{} `json:"result"`
}

// AirQuality fetches one month of readings for every configured
// station and combines them into a single record set. Stations are
// fetched concurrently; row order follows the station list.
func (c *Client) AirQuality(ctx context.Context, period string) (*domain.Frame, error) {
	perStation := make([][]map[string]interface{}, len(c.cfg.Stations))

	g, gctx := errgroup.WithContext(ctx)
	for i, station := range c.cfg.Stations {
		g.Go(func() error {
			params := url.Values{}
			params.Set("station", strconv.Itoa(station))
			params.Set("month", period)

			var resp airQualityResponse
			if err := c.getJSON(gctx, c.cfg.AirQualityURL, params, &resp); err != nil {
				return err
			}
			for _, reading := range resp.Readings {
				reading["station"] = float64(station)
			}
			perStation[i] = resp.Readings

			c.logger.InfoContext(gctx, "fetched air-quality readings",
				slog.Int("station", station),
				slog.String("period", period),
				slog.Int("readings", len(resp.Readings)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	for _, readings := range perStation {
		rows = append(rows, readings...)
	}
	return frameFromMaps(rows), nil
}

// Hospitalizations fetches one month of all-cause admissions.
func (c *Client) Hospitalizations(ctx context.Context, period string) (*domain.Frame, error) {
	params := url.Values{}
	params.Set("month", period)
	return c.fetchAdmissions(ctx, period, params)
}

// HospitalizationsFiltered fetches the configured city / ICD-range
// admissions subset for one month.
func (c *Client) HospitalizationsFiltered(ctx context.Context, period string) (*domain.Frame, error) {
	params := url.Values{}
	params.Set("month", period)
	params.Set("city", c.cfg.FilterCity)
	params.Set("cid_start", c.cfg.FilterICDFrom)
	params.Set("cid_end", c.cfg.FilterICDTo)
	return c.fetchAdmissions(ctx, period, params)
}

func (c *Client) fetchAdmissions(ctx context.Context, period string, params url.Values) (*domain.Frame, error) {
	var resp datasusResponse
	if err := c.getJSON(ctx, c.cfg.DatasusURL, params, &resp); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "fetched hospitalization records",
		slog.String("period", period),
		slog.Int("records", len(resp.Result)))
	return frameFromMaps(resp.Result), nil
}

// getJSON performs a rate-limited GET and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := baseURL
	if len(params) > 0 {
		reqURL = baseURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.NewNetworkError("failed to build request", err).
			WithContext("url", baseURL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("request failed", err).
			WithContext("url", baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewNetworkError(
			fmt.Sprintf("bad status %s", resp.Status), nil).
			WithContext("url", baseURL).
			WithContext("status_code", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParsingError("failed to decode response body", err).
			WithContext("url", baseURL)
	}
	return nil
}

// frameFromMaps converts decoded JSON objects into a Frame. The column
// schema is the sorted union of keys so output is deterministic
// regardless of map iteration order.
func frameFromMaps(rows []map[string]interface{}) *domain.Frame {
	keySet := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			keySet[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(keySet))
	for k := range keySet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	frame := domain.NewFrame(columns...)
	for _, row := range rows {
		rec := make(domain.Row, len(columns))
		for i, col := range columns {
			rec[i] = valueFromJSON(row[col])
		}
		frame.Rows = append(frame.Rows, rec)
	}
	return frame
}

// valueFromJSON maps a decoded JSON scalar onto the Value union.
func valueFromJSON(v interface{}) domain.Value {
	switch x := v.(type) {
	case nil:
		return domain.Missing()
	case float64:
		return domain.Number(x)
	case string:
		if x == "" {
			return domain.Missing()
		}
		return domain.Text(x)
	case bool:
		return domain.Text(strconv.FormatBool(x))
	default:
		return domain.Text(fmt.Sprintf("%v", x))
	}
}
