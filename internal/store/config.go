package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stock-advisor/internal/ensemble"
)

type Config struct {
	Symbols      []string `yaml:"symbols"`
	HistoryDays  int      `yaml:"history_days"`
	PriceDataDir string   `yaml:"price_data_dir"`

	Ensemble struct {
		Window  int                `yaml:"window"`
		Profile string             `yaml:"profile"`
		Weights map[string]float64 `yaml:"weights"`
	} `yaml:"ensemble"`

	Forecast struct {
		HorizonDays int `yaml:"horizon_days"`
	} `yaml:"forecast"`

	News struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`

	Schedule struct {
		HorizonDays     int     `yaml:"horizon_days"`
		ConfidenceLevel float64 `yaml:"confidence_level"`
	} `yaml:"schedule"`

	Telemetry struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"telemetry"`

	Journal struct {
		Enabled       bool `yaml:"enabled"`
		RetentionDays int  `yaml:"retention_days"`
	} `yaml:"journal"`

	Cron string `yaml:"cron"` // empty means run once and exit
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.PriceDataDir == "" {
		return errors.New("price_data_dir cannot be empty")
	}
	if c.Ensemble.Window <= 0 {
		return fmt.Errorf("ensemble.window must be positive, got %d", c.Ensemble.Window)
	}
	if len(c.Ensemble.Weights) == 0 {
		if _, ok := ensemble.Profile(c.Ensemble.Profile); !ok {
			return fmt.Errorf("unknown ensemble.profile %q", c.Ensemble.Profile)
		}
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be positive, got %d", c.Forecast.HorizonDays)
	}
	if c.Schedule.ConfidenceLevel <= 0 || c.Schedule.ConfidenceLevel >= 1 {
		return fmt.Errorf("schedule.confidence_level must lie in (0,1), got %.2f", c.Schedule.ConfidenceLevel)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.HistoryDays == 0 {
		c.HistoryDays = 365
	}
	if c.Ensemble.Window == 0 {
		c.Ensemble.Window = 10
	}
	if c.Ensemble.Profile == "" && len(c.Ensemble.Weights) == 0 {
		c.Ensemble.Profile = "Balanced"
	}
	if c.Forecast.HorizonDays == 0 {
		c.Forecast.HorizonDays = 30
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 15
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 30
	}
	if c.Schedule.HorizonDays == 0 {
		c.Schedule.HorizonDays = 30
	}
	if c.Schedule.ConfidenceLevel == 0 {
		c.Schedule.ConfidenceLevel = 0.95
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 30
	}
	if c.Telemetry.ListenAddr == "" {
		c.Telemetry.ListenAddr = ":9090"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
