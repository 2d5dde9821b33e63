package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"

	"macropulse/internal/providers"
)

const (
	defaultBaseURL        = "https://api.worldbank.org/v2"
	defaultIndicatorPath  = "/country/{iso3}/indicator/{code}"
	defaultFormatValue    = "json"
	defaultPerPage        = 200
	defaultTimeoutSeconds = 20
	defaultUserAgent      = "macropulse/0.1"
)

type Config struct {
	BaseURL   string        `envconfig:"BASE_URL"`
	Format    string        `envconfig:"FORMAT"`
	PerPage   int           `envconfig:"PER_PAGE"`
	Timeout   time.Duration `envconfig:"TIMEOUT"`
	UserAgent string        `envconfig:"USER_AGENT"`
}

// Provider fetches indicator data from the World Bank v2 API. Responses are
// a two-element envelope [metadata, rows]; a single page sized PerPage is
// requested, large enough for any sane year window (pagination is a known
// limitation, not handled).
type Provider struct {
	config Config
	client *resty.Client
}

func New() (*Provider, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Format == "" {
		cfg.Format = defaultFormatValue
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Provider{config: cfg, client: client}, nil
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("wb", &cfg); err != nil {
		return Config{}, fmt.Errorf("worldbank: config: %w", err)
	}
	return cfg, nil
}

func (p *Provider) Name() string {
	return "worldbank"
}

func (p *Provider) FetchValue(ctx context.Context, iso3, indicatorCode string, year int) (*float64, error) {
	rows, err := p.FetchRange(ctx, iso3, indicatorCode, year, year)
	if err != nil {
		return nil, err
	}
	want := strconv.Itoa(year)
	for _, row := range rows {
		if strings.TrimSpace(row.Date) != want {
			continue
		}
		if row.Value == nil {
			return nil, nil
		}
		value := *row.Value
		return &value, nil
	}
	return nil, nil
}

func (p *Provider) FetchRange(ctx context.Context, iso3, indicatorCode string, startYear, endYear int) ([]providers.RawRow, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"iso3": iso3,
			"code": indicatorCode,
		}).
		SetQueryParams(map[string]string{
			"format":   p.config.Format,
			"date":     fmt.Sprintf("%d:%d", startYear, endYear),
			"per_page": strconv.Itoa(p.config.PerPage),
			"page":     "1",
		}).
		Get(defaultIndicatorPath)
	if err != nil {
		return nil, fmt.Errorf("worldbank: request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("worldbank: request failed (%s): %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return parseEnvelope(resp.Body()), nil
}

// parseEnvelope validates the [metadata, rows] shape. Empty, null or
// malformed envelopes mean "no data", never an error.
func parseEnvelope(body []byte) []providers.RawRow {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if len(envelope) < 2 {
		return nil
	}
	raw := envelope[1]
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var rows []providers.RawRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	return rows
}

var _ providers.Provider = (*Provider)(nil)
