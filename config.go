package cursescell

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings of the cell layer.
// Variables are read with the CURSESCELL_ prefix, e.g. CURSESCELL_LAYOUT=wide32.
type Config struct {
	// Libraries are the shared-library names tried in order by OpenLibrary.
	Libraries []string `envconfig:"LIBRARIES" default:"libncursesw.so.6,libncursesw.so,libncurses.so.6,libncurses.so,libncursesw.6.dylib,libncurses.dylib"`
	// Layout forces a cell layout ("narrow", "wide16", "wide32"); empty means probe.
	Layout string `envconfig:"LAYOUT"`
	// CodePage is the narrow-layout code page.
	CodePage string `envconfig:"CODE_PAGE" default:"ISO-8859-1"`
	// ChunkSize is the number of input bytes per transcoder step.
	ChunkSize int `envconfig:"CHUNK_SIZE" default:"16"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEV" default:"false"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("cursescell", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigOrDefault reads configuration from the environment or returns the defaults.
func LoadConfigOrDefault() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Libraries: []string{
			"libncursesw.so.6",
			"libncursesw.so",
			"libncurses.so.6",
			"libncurses.so",
			"libncursesw.6.dylib",
			"libncurses.dylib",
		},
		CodePage:  DefaultCodePage,
		ChunkSize: DefaultChunkSize,
		LogLevel:  "info",
	}
}

// Options converts the configuration into factory options.
// The logger is built from LogLevel and LogDevelopment.
func (c *Config) Options() ([]Option, error) {
	cp, err := LookupCodePage(c.CodePage)
	if err != nil {
		return nil, err
	}
	if c.Layout != "" {
		if _, err := ParseLayout(c.Layout); err != nil {
			return nil, err
		}
	}
	logger, err := NewLogger(c.LogLevel, c.LogDevelopment)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return []Option{
		WithLayout(c.Layout),
		WithCodePage(cp),
		WithChunkSize(c.ChunkSize),
		WithLogger(logger),
	}, nil
}
