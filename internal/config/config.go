package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

type Config struct {
	ITAD      ITAD
	RateLimit RateLimit
	Query     Query
	Cache     Cache
	Details   Details
	Redis     Redis
	Bot       Bot
	Servers   Servers
	Log       Log
}

// Load reads .env (optional), the environment and then fills what the
// environment left unset from the user config file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	path := config.ITAD.ConfigFile
	if path == "" {
		path = DefaultUserFilePath()
	}

	if path != "" {
		file, err := ReadUserFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config.ReadUserFile: %w", err)
		}

		config.applyUserFile(file, os.LookupEnv)
	}

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("validate.Struct: %w", err)
	}

	return config, nil
}

// UserFile is the JSON settings file written by the setup wizard.
type UserFile struct {
	APIKey          string `json:"api_key"`
	Region          string `json:"region"`
	PageSize        int    `json:"deals_page_size"`
	DefaultPlatform string `json:"default_platform"`
	SortCriteria    string `json:"default_sort_criteria"`
	SortDirection   string `json:"default_sort_direction"`
	GameInfoDelayMs int    `json:"game_info_delay_ms"`
}

func DefaultUserFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "dealve", "config.json")
}

// ReadUserFile returns a zero UserFile when the file does not exist.
func ReadUserFile(path string) (UserFile, error) {
	var file UserFile

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}

	if err != nil {
		return file, fmt.Errorf("os.ReadFile: %w", err)
	}

	if err := json.Unmarshal(b, &file); err != nil {
		return file, fmt.Errorf("json.Unmarshal %s: %w", path, err)
	}

	return file, nil
}

// WriteUserFile stores file at path, creating the directory. The file
// holds the API key and is readable by the owner only.
func WriteUserFile(path string, file UserFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	b, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	return nil
}

func (c *Config) applyUserFile(file UserFile, lookup func(string) (string, bool)) {
	unset := func(key string) bool {
		_, ok := lookup(key)
		return !ok
	}

	if c.ITAD.APIKey == "" {
		c.ITAD.APIKey = file.APIKey
	}

	if file.Region != "" && unset(envCountry) {
		c.ITAD.Country = file.Region
	}

	if file.PageSize != 0 && unset(envPageSize) {
		c.ITAD.PageSize = file.PageSize
	}

	if file.DefaultPlatform != "" && unset(envDefaultStore) {
		c.Query.DefaultStore = file.DefaultPlatform
	}

	if file.SortCriteria != "" && unset(envDefaultSort) {
		c.Query.DefaultSort = userFileSort(file.SortCriteria, file.SortDirection)
	}

	if file.GameInfoDelayMs > 0 && unset(envInfoDelay) {
		c.Details.InfoDelay = msToDuration(file.GameInfoDelayMs)
	}
}
