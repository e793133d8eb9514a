package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/tidwall/jsonc"
)

// FileName is the config file inside the data dir. Comments and trailing
// commas are allowed.
const FileName = "config.jsonc"

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// Config is the persistent application configuration
type Config struct {
	Table  TableConfig  `json:"table"`
	Server ServerConfig `json:"server"`

	// Remote is the base URL of a dashtable API to browse instead of the
	// local database.
	Remote string `json:"remote" validate:"omitempty,url"`

	UI UIConfig `json:"ui"`
}

// TableConfig holds data-table behavior
type TableConfig struct {
	PageSize     int `json:"page_size" validate:"oneof=10 25 50"`
	DebounceMs   int `json:"debounce_ms" validate:"min=50,max=5000"`
	StaleAfterMs int `json:"stale_after_ms" validate:"min=0,max=600000"`
}

// ServerConfig for --serve mode
type ServerConfig struct {
	Addr string `json:"addr" validate:"hostname_port"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	SidebarCollapsed bool `json:"sidebar_collapsed"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			PageSize:     10,
			DebounceMs:   300,
			StaleAfterMs: 30000,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Debounce is the filter debounce wait.
func (t TableConfig) Debounce() time.Duration {
	return time.Duration(t.DebounceMs) * time.Millisecond
}

// StaleAfter is how long a cached page is served without a refetch.
func (t TableConfig) StaleAfter() time.Duration {
	return time.Duration(t.StaleAfterMs) * time.Millisecond
}

// DataDir returns ~/.dashtable
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dashtable")
}

// Path returns the path to the config file in dataDir
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads config from dataDir, or returns defaults if there is none.
// Keys missing from the file keep their default values.
func Load(dataDir string) (*Config, error) {
	path := Path(dataDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes JSONC over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint and reports them all at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, msg := range verrs.Translate(trans) {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Save writes config to dataDir
func (c *Config) Save(dataDir string) error {
	path := Path(dataDir)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
