package gauge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// GatewayOptions parameterise the gauge gateway fetcher.
type GatewayOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Gateway reads station gauges through the plant's HTTP gauge gateway,
// which fronts the Modbus field devices.
type Gateway struct {
	opts    GatewayOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewGateway constructs a gateway fetcher.
func NewGateway(opts GatewayOptions, logger zerolog.Logger) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Gateway{
		opts:    opts,
		logger:  logger.With().Str("component", "gauge_gateway").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// ReadGauge fetches the oil level, capacity, and minimum registers for
// one station.
func (g *Gateway) ReadGauge(ctx context.Context, stationNo int) (Sample, error) {
	if g.baseURL == "" {
		return Sample{}, errors.New("gauge gateway base url not configured")
	}
	if stationNo < 1 {
		return Sample{}, fmt.Errorf("invalid station number %d", stationNo)
	}

	endpoint := fmt.Sprintf("%s/stations/%d/gauge", g.baseURL, stationNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Sample{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(g.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Sample{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Sample{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return Sample{}, parseHTTPError(resp.StatusCode, payload)
	}

	var decoded gaugePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Sample{}, err
	}

	sample, err := decoded.toSample()
	if err != nil {
		return Sample{}, err
	}

	g.logger.Debug().
		Int("station", stationNo).
		Str("oil_level", sample.OilLevel.String()).
		Msg("gauge read")

	return sample, nil
}

type gaugePayload struct {
	OilLevel     json.Number `json:"oilLevel"`
	TankCapacity json.Number `json:"tankCapacity"`
	MinOilLevel  json.Number `json:"minOilLevel"`
}

func (p gaugePayload) toSample() (Sample, error) {
	oilLevel, err := decimal.NewFromString(p.OilLevel.String())
	if err != nil {
		return Sample{}, fmt.Errorf("parse oil level: %w", err)
	}
	capacity, err := decimal.NewFromString(p.TankCapacity.String())
	if err != nil {
		return Sample{}, fmt.Errorf("parse tank capacity: %w", err)
	}
	minLevel, err := decimal.NewFromString(p.MinOilLevel.String())
	if err != nil {
		return Sample{}, fmt.Errorf("parse min oil level: %w", err)
	}

	if oilLevel.Sign() < 0 || capacity.Sign() < 0 || minLevel.Sign() < 0 {
		return Sample{}, errors.New("gauge registers must be non-negative")
	}

	return Sample{OilLevel: oilLevel, TankCapacity: capacity, MinOilLevel: minLevel}, nil
}

type gatewayError struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr gatewayError
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Description != "" {
			return fmt.Errorf("gauge gateway error (%d): %s", status, apiErr.Description)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("gauge gateway error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("gauge gateway error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("gauge gateway error (%d)", status)
}

var _ Reader = (*Gateway)(nil)
