package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors StructuredConfig with JSON tags and
// string-friendly durations for file-based configuration.
type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Server struct {
		HTTPAddress        string   `json:"http_address"`
		RequestTimeout     Duration `json:"request_timeout"`
		LoginRatePerMinute int      `json:"login_rate_per_minute"`
		LoginRateBurst     int      `json:"login_rate_burst"`
	} `json:"server,omitempty"`

	Upstream struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"upstream,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Session struct {
		AccessTTL        Duration `json:"access_ttl"`
		RefreshTTL       Duration `json:"refresh_ttl"`
		HydrationTimeout Duration `json:"hydration_timeout"`
		CookieDomain     string   `json:"cookie_domain"`
		SecureCookies    bool     `json:"secure_cookies"`
		LoginPath        string   `json:"login_path"`
		LandingPath      string   `json:"landing_path"`
	} `json:"session,omitempty"`

	Activation struct {
		DefaultTTLHours int `json:"default_ttl_hours"`
		MaxAttempts     int `json:"max_attempts"`
		BcryptCost      int `json:"bcrypt_cost"`
	} `json:"activation,omitempty"`

	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version: jsonCfg.App.Version,
		},
		Server: Server{
			HTTPAddress:        jsonCfg.Server.HTTPAddress,
			RequestTimeout:     time.Duration(jsonCfg.Server.RequestTimeout),
			LoginRatePerMinute: jsonCfg.Server.LoginRatePerMinute,
			LoginRateBurst:     jsonCfg.Server.LoginRateBurst,
		},
		Upstream: Upstream{
			BaseURL:        jsonCfg.Upstream.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Upstream.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Session: Session{
			AccessTTL:        time.Duration(jsonCfg.Session.AccessTTL),
			RefreshTTL:       time.Duration(jsonCfg.Session.RefreshTTL),
			HydrationTimeout: time.Duration(jsonCfg.Session.HydrationTimeout),
			CookieDomain:     jsonCfg.Session.CookieDomain,
			SecureCookies:    jsonCfg.Session.SecureCookies,
			LoginPath:        jsonCfg.Session.LoginPath,
			LandingPath:      jsonCfg.Session.LandingPath,
		},
		Activation: Activation{
			DefaultTTLHours: jsonCfg.Activation.DefaultTTLHours,
			MaxAttempts:     jsonCfg.Activation.MaxAttempts,
			BcryptCost:      jsonCfg.Activation.BcryptCost,
		},
		Workers: Workers{
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
