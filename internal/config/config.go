package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/pkg/errors"
)

var (
	ErrMissingAPIKey   = stderrors.New("steam API key is required")
	ErrMissingIdentity = stderrors.New("either a vanity URL or a steam id is required")
	ErrInvalidSteamID  = stderrors.New("steam id must be numeric")
	ErrInvalidRewriter = stderrors.New(`rewriter must be "regex" or "tree"`)
	ErrNegativeValue   = stderrors.New("value must not be negative")
)

const (
	RewriterRegex = "regex"
	RewriterTree  = "tree"
)

type Config struct {
	Steam   SteamConfig
	Assets  AssetsConfig
	Output  OutputConfig
	Pacing  PacingConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

type SteamConfig struct {
	APIKey       string
	VanityURL    string
	SteamID      string
	APIBaseURL   string
	StoreBaseURL string
}

type AssetsConfig struct {
	Path         string
	Skip         bool
	FetchTimeout time.Duration
}

type OutputConfig struct {
	Dir      string
	HTML     bool
	Rewriter string
}

type PacingConfig struct {
	Delay time.Duration
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

// Overrides carries command-line values. Nil fields were not given.
type Overrides struct {
	VanityURL  *string
	SteamID    *string
	AssetPath  *string
	OutputDir  *string
	SkipAssets *bool
	HTML       *bool
	Rewriter   *string
	LogLevel   *string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Steam: SteamConfig{
			APIBaseURL:   constants.APIConfig.SteamAPIBaseURL,
			StoreBaseURL: constants.APIConfig.SteamStoreBaseURL,
		},
		Assets: AssetsConfig{
			Path:         constants.AssetConfig.DefaultRoot,
			FetchTimeout: constants.AssetConfig.FetchTimeout,
		},
		Output: OutputConfig{
			Dir:      constants.OutputConfig.DefaultDir,
			Rewriter: RewriterRegex,
		},
		Pacing: PacingConfig{
			Delay: constants.PacingConfig.TitleDelay,
		},
		Cache: CacheConfig{
			TTL: constants.CacheTTL.AppDetails,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load resolves the configuration with precedence flags > env > file >
// defaults. file may be empty, in which case CONFIG_FILE is consulted.
func Load(file string, overrides Overrides) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file != "" {
		fc, err := readFile(file)
		if err != nil {
			return nil, err
		}
		fc.applyTo(cfg)
	}

	cfg.applyEnv()
	cfg.apply(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Steam.APIKey = getEnv("STEAM_API_KEY", c.Steam.APIKey)
	c.Steam.VanityURL = getEnv("VANITY_URL", c.Steam.VanityURL)
	c.Steam.SteamID = getEnv("STEAM_ID", c.Steam.SteamID)
	c.Steam.APIBaseURL = getEnv("STEAM_API_BASE_URL", c.Steam.APIBaseURL)
	c.Steam.StoreBaseURL = getEnv("STEAM_STORE_BASE_URL", c.Steam.StoreBaseURL)

	c.Assets.Path = getEnv("ASSET_PATH", c.Assets.Path)
	c.Assets.Skip = getEnvBool("SKIP_STORING_ASSETS", c.Assets.Skip)
	c.Assets.FetchTimeout = time.Duration(getEnvInt("ASSET_TIMEOUT_SECONDS", int(c.Assets.FetchTimeout/time.Second))) * time.Second

	c.Output.Dir = getEnv("FILE_PATH", c.Output.Dir)
	c.Output.HTML = getEnvBool("EXPORT_HTML", c.Output.HTML)
	c.Output.Rewriter = getEnv("DESCRIPTION_REWRITER", c.Output.Rewriter)

	c.Pacing.Delay = time.Duration(getEnvInt("REQUEST_DELAY_MS", int(c.Pacing.Delay/time.Millisecond))) * time.Millisecond

	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTL = time.Duration(getEnvInt("CACHE_TTL_MINUTES", int(c.Cache.TTL/time.Minute))) * time.Minute

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("LOG_FILE", c.Logging.File)
}

func (c *Config) apply(o Overrides) {
	setString(&c.Steam.VanityURL, o.VanityURL)
	setString(&c.Steam.SteamID, o.SteamID)
	setString(&c.Assets.Path, o.AssetPath)
	setString(&c.Output.Dir, o.OutputDir)
	setString(&c.Output.Rewriter, o.Rewriter)
	setString(&c.Logging.Level, o.LogLevel)
	if o.SkipAssets != nil {
		c.Assets.Skip = *o.SkipAssets
	}
	if o.HTML != nil {
		c.Output.HTML = *o.HTML
	}
	// An explicit steam id on the command line beats a vanity name from
	// lower layers.
	if o.SteamID != nil && o.VanityURL == nil {
		c.Steam.VanityURL = ""
	}
}

func (c *Config) Validate() error {
	if c.Steam.APIKey == "" {
		return invalid("STEAM_API_KEY", ErrMissingAPIKey)
	}
	if c.Steam.VanityURL == "" && c.Steam.SteamID == "" {
		return invalid("VANITY_URL", ErrMissingIdentity)
	}
	if c.Steam.VanityURL == "" && !isDigits(c.Steam.SteamID) {
		return invalid("STEAM_ID", ErrInvalidSteamID)
	}
	switch c.Output.Rewriter {
	case RewriterRegex, RewriterTree:
	default:
		return invalid("DESCRIPTION_REWRITER", ErrInvalidRewriter)
	}
	if c.Assets.FetchTimeout < 0 {
		return invalid("ASSET_TIMEOUT_SECONDS", ErrNegativeValue)
	}
	if c.Pacing.Delay < 0 {
		return invalid("REQUEST_DELAY_MS", ErrNegativeValue)
	}
	if c.Cache.TTL < 0 {
		return invalid("CACHE_TTL_MINUTES", ErrNegativeValue)
	}
	return nil
}

// Identity is the name used for the output file: the vanity name when
// set, the numeric id otherwise.
func (c *Config) Identity() string {
	if c.Steam.VanityURL != "" {
		return c.Steam.VanityURL
	}
	return c.Steam.SteamID
}

func invalid(field string, cause error) error {
	ce := errors.NewConfigError(field, field)
	ce.Cause = cause
	return ce
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, ok := parseBool(value); ok {
			return boolVal
		}
	}
	return defaultValue
}

// parseBool accepts strconv.ParseBool forms plus yes/no.
func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return b, err == nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
