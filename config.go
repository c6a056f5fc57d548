package oui

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config

type Config struct {
	// Registry
	DB      string        `json:"db"`      // registry path, ".gz" optional
	URL     string        `json:"url"`     // refresh source
	History string        `json:"history"` // refresh history database
	Timeout time.Duration `json:"timeout"` // refresh timeout, "60s" or nanoseconds

	// HTTP
	Host    string        `json:"host"`
	Port    uint16        `json:"port"`
	Reload  time.Duration `json:"reload"` // registry reload interval, 0 disables
	Rate    float64       `json:"rate"`   // API requests per second, 0 disables
	Burst   int           `json:"burst"`
	TLSCert string        `json:"tls_cert"`
	TLSKey  string        `json:"tls_key"`
}

func DefaultConfig() Config {
	return Config{
		DB:      "data/manuf",
		URL:     "https://www.wireshark.org/download/automated/data/manuf",
		History: "data/history.db",
		Timeout: time.Minute,
		Host:    "127.0.0.1",
		Port:    8080,
		Reload:  0,
		Rate:    0,
		Burst:   20,
	}
}

// LoadConfig returns the default config overridden by the JSON file at
// path, if any, and then by OUI_* environment variables.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if db := os.Getenv("OUI_DB"); db != "" {
		c.DB = db
	}
	if u := os.Getenv("OUI_URL"); u != "" {
		c.URL = u
	}
	if h := os.Getenv("OUI_HISTORY"); h != "" {
		c.History = h
	}
	if h := os.Getenv("OUI_HOST"); h != "" {
		c.Host = h
	}
	if p := os.Getenv("OUI_PORT"); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Config{}, fmt.Errorf("parse OUI_PORT: %w", err)
		}
		c.Port = uint16(n)
	}

	return c, nil
}

// MarshalJSON writes durations as strings such as "1m0s".
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		plain
		Timeout string `json:"timeout"`
		Reload  string `json:"reload"`
	}{plain(c), c.Timeout.String(), c.Reload.String()})
}

// UnmarshalJSON accepts durations either as strings understood by
// time.ParseDuration or as integer nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Timeout duration `json:"timeout"`
		Reload  duration `json:"reload"`
	}{
		plain:   (*plain)(c),
		Timeout: duration(c.Timeout),
		Reload:  duration(c.Reload),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Timeout = time.Duration(aux.Timeout)
	c.Reload = time.Duration(aux.Reload)
	return nil
}

type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch v := v.(type) {
	case float64:
		*d = duration(v)
	case string:
		p, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = duration(p)
	default:
		return fmt.Errorf("invalid duration: %s", data)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
