package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

var (
	ErrConfigNotFound = stderrors.New("config file not found")
	ErrConfigParse    = stderrors.New("failed to parse config")
)

const maxFileSize = 1 << 20

// fileConfig mirrors the YAML layout. Pointers distinguish "absent" from
// a zero value so only keys present in the file override defaults.
type fileConfig struct {
	Steam struct {
		APIKey       *string `yaml:"apiKey"`
		VanityURL    *string `yaml:"vanityUrl"`
		SteamID      *string `yaml:"steamId"`
		APIBaseURL   *string `yaml:"apiBaseUrl"`
		StoreBaseURL *string `yaml:"storeBaseUrl"`
	} `yaml:"steam"`
	Assets struct {
		Path           *string `yaml:"path"`
		Skip           *bool   `yaml:"skip"`
		TimeoutSeconds *int    `yaml:"timeoutSeconds"`
	} `yaml:"assets"`
	Output struct {
		Dir      *string `yaml:"dir"`
		HTML     *bool   `yaml:"html"`
		Rewriter *string `yaml:"rewriter"`
	} `yaml:"output"`
	Pacing struct {
		RequestDelayMs *int `yaml:"requestDelayMs"`
	} `yaml:"pacing"`
	Cache struct {
		RedisURL   *string `yaml:"redisUrl"`
		TTLMinutes *int    `yaml:"ttlMinutes"`
	} `yaml:"cache"`
	Logging struct {
		Level *string `yaml:"level"`
		File  *string `yaml:"file"`
	} `yaml:"logging"`
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrConfigParse, path, maxFileSize)
	}

	var fc fileConfig
	if len(data) == 0 {
		return &fc, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &fc, nil
}

func (fc *fileConfig) applyTo(c *Config) {
	setString(&c.Steam.APIKey, fc.Steam.APIKey)
	setString(&c.Steam.VanityURL, fc.Steam.VanityURL)
	setString(&c.Steam.SteamID, fc.Steam.SteamID)
	setString(&c.Steam.APIBaseURL, fc.Steam.APIBaseURL)
	setString(&c.Steam.StoreBaseURL, fc.Steam.StoreBaseURL)

	setString(&c.Assets.Path, fc.Assets.Path)
	if fc.Assets.Skip != nil {
		c.Assets.Skip = *fc.Assets.Skip
	}
	if fc.Assets.TimeoutSeconds != nil {
		c.Assets.FetchTimeout = time.Duration(*fc.Assets.TimeoutSeconds) * time.Second
	}

	setString(&c.Output.Dir, fc.Output.Dir)
	setString(&c.Output.Rewriter, fc.Output.Rewriter)
	if fc.Output.HTML != nil {
		c.Output.HTML = *fc.Output.HTML
	}

	if fc.Pacing.RequestDelayMs != nil {
		c.Pacing.Delay = time.Duration(*fc.Pacing.RequestDelayMs) * time.Millisecond
	}

	setString(&c.Cache.RedisURL, fc.Cache.RedisURL)
	if fc.Cache.TTLMinutes != nil {
		c.Cache.TTL = time.Duration(*fc.Cache.TTLMinutes) * time.Minute
	}

	setString(&c.Logging.Level, fc.Logging.Level)
	setString(&c.Logging.File, fc.Logging.File)
}
