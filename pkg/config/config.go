package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"VolEdge/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Engine      EngineConfig     `yaml:"engine"`
	Cache       CacheConfig      `yaml:"cache"`
	Budget      BudgetConfig     `yaml:"budget"`
	Upstream    UpstreamConfig   `yaml:"upstream"`
	History     HistoryConfig    `yaml:"history"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Batch       BatchConfig      `yaml:"batch"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       struct {
		PerSecond float64 `yaml:"per_second" default:"20" validate:"gt=0"`
		Burst     int     `yaml:"burst" default:"40" validate:"gte=1"`
	} `yaml:"rate_limit"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

type EngineConfig struct {
	VRP struct {
		Profile string `yaml:"profile" default:"LEGACY" validate:"oneof=LEGACY BALANCED CONSERVATIVE AGGRESSIVE CUSTOM"`
		Custom  struct {
			Excellent float64 `yaml:"excellent"`
			Good      float64 `yaml:"good"`
			Marginal  float64 `yaml:"marginal"`
		} `yaml:"custom"`
	} `yaml:"vrp"`
	Liquidity struct {
		OIExcellent     float64 `yaml:"oi_excellent" default:"5"`
		OIGood          float64 `yaml:"oi_good" default:"2"`
		OIWarning       float64 `yaml:"oi_warning" default:"1"`
		SpreadExcellent float64 `yaml:"spread_excellent" default:"8"`
		SpreadGood      float64 `yaml:"spread_good" default:"12"`
		SpreadWarning   float64 `yaml:"spread_warning" default:"15"`
	} `yaml:"liquidity"`
	Scoring struct {
		Weights struct {
			VRP       float64 `yaml:"vrp" default:"0.55" validate:"gte=0"`
			Move      float64 `yaml:"move" default:"0.25" validate:"gte=0"`
			Liquidity float64 `yaml:"liquidity" default:"0.20" validate:"gte=0"`
		} `yaml:"weights"`
		VRPTarget     float64 `yaml:"vrp_target" default:"7.0" validate:"gt=0"`
		MoveReference float64 `yaml:"move_reference" default:"5.0" validate:"gt=0"`
		CapAt100      bool    `yaml:"cap_at_100"`
	} `yaml:"scoring"`
	Sizing struct {
		KellyFraction float64 `yaml:"kelly_fraction" default:"0.25" validate:"gt=0,lte=1"`
		MinEdge       float64 `yaml:"min_edge" default:"0.05"`
		MinContracts  int     `yaml:"min_contracts" default:"1" validate:"gte=1"`
		MaxContracts  int     `yaml:"max_contracts" default:"10" validate:"gte=1"`
	} `yaml:"sizing"`
	Guardrail struct {
		OutlierRatio    float64 `yaml:"outlier_ratio" default:"20" validate:"gt=0"`
		StaleWindowDays int     `yaml:"stale_window_days" default:"7" validate:"gte=0"`
		StaleCacheHours float64 `yaml:"stale_cache_hours" default:"24" validate:"gt=0"`
		MinHistory      int     `yaml:"min_history" default:"4" validate:"gte=1"`
	} `yaml:"guardrail"`
}

type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" default:"1000" validate:"gte=1"`
	TTL        struct {
		History   time.Duration `yaml:"history" default:"168h"`
		Market    time.Duration `yaml:"market" default:"36h"`
		Sentiment time.Duration `yaml:"sentiment" default:"12h"`
	} `yaml:"ttl"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"voledge"`
	} `yaml:"redis"`
}

type BudgetConfig struct {
	DailyCalls  int                `yaml:"daily_calls" default:"500" validate:"gte=0"`
	MonthlyCost float64            `yaml:"monthly_cost" default:"50" validate:"gte=0"`
	Timezone    string             `yaml:"timezone" default:"UTC"`
	Costs       map[string]float64 `yaml:"costs"`
}

type UpstreamConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout" default:"5s"`
	Attempts  int           `yaml:"attempts" default:"2" validate:"gte=1,lte=5"`
	Sentiment bool          `yaml:"sentiment" default:"true"`
	Breaker   struct {
		MaxRequests      uint32        `yaml:"max_requests" default:"3"`
		Interval         time.Duration `yaml:"interval" default:"60s"`
		Timeout          time.Duration `yaml:"timeout" default:"30s"`
		FailureThreshold uint32        `yaml:"failure_threshold" default:"5" validate:"gte=1"`
	} `yaml:"breaker"`
}

type HistoryConfig struct {
	Source     string `yaml:"source" default:"http" validate:"oneof=http clickhouse"`
	Table      string `yaml:"table" default:"earnings_moves"`
	MaxSamples int    `yaml:"max_samples" default:"16" validate:"gte=4"`
}

type ClickHouseConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port" default:"9000"`
	Database    string        `yaml:"database" default:"voledge"`
	User        string        `yaml:"user" default:"default"`
	Password    string        `yaml:"password"`
	UseHTTP     bool          `yaml:"use_http"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
}

type BatchConfig struct {
	Workers int `yaml:"workers" default:"8" validate:"gte=1,lte=64"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables before validating.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("VOLEDGE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("VOLEDGE_VRP_PROFILE"); v != "" {
		c.Engine.VRP.Profile = v
	}
	if v := os.Getenv("VOLEDGE_BATCH_WORKERS"); v != "" {
		c.Batch.Workers = util.ParseIntDefault(v, c.Batch.Workers)
	}
	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("UPSTREAM_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Validate checks tags first, then cross-field rules.
func (c *Config) Validate() error {
	c.Engine.VRP.Profile = strings.ToUpper(strings.TrimSpace(c.Engine.VRP.Profile))

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Engine.VRP.Profile == "CUSTOM" {
		t := c.Engine.VRP.Custom
		if !(t.Excellent > t.Good && t.Good > t.Marginal && t.Marginal > 0) {
			return fmt.Errorf("engine.vrp.custom thresholds must be positive and descending, got %g/%g/%g", t.Excellent, t.Good, t.Marginal)
		}
	}
	w := c.Engine.Scoring.Weights
	if sum := w.VRP + w.Move + w.Liquidity; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("engine.scoring.weights must sum to 1, got %g", sum)
	}
	if c.Engine.Sizing.MaxContracts < c.Engine.Sizing.MinContracts {
		return fmt.Errorf("engine.sizing.max_contracts (%d) < min_contracts (%d)", c.Engine.Sizing.MaxContracts, c.Engine.Sizing.MinContracts)
	}
	l := c.Engine.Liquidity
	if !(l.OIExcellent > l.OIGood && l.OIGood > l.OIWarning && l.OIWarning > 0) {
		return fmt.Errorf("engine.liquidity oi thresholds must be positive and descending")
	}
	if !(l.SpreadExcellent < l.SpreadGood && l.SpreadGood < l.SpreadWarning && l.SpreadExcellent > 0) {
		return fmt.Errorf("engine.liquidity spread thresholds must be positive and ascending")
	}
	if c.History.Source == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when history.source is clickhouse")
	}
	if _, err := time.LoadLocation(c.Budget.Timezone); err != nil {
		return fmt.Errorf("budget.timezone: %w", err)
	}
	return nil
}
