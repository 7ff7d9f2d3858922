package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/KostasZigo/gitobj/internal/constants"
	"github.com/klauspost/compress/zlib"
)

// Environment variables that override the [user] section.
const (
	AuthorNameEnv  = "GOGIT_AUTHOR_NAME"
	AuthorEmailEnv = "GOGIT_AUTHOR_EMAIL"
)

// ErrInvalidConfig reports a config file that parses but holds bad values.
var ErrInvalidConfig = errors.New("invalid config")

// Config mirrors .gogit/config.toml.
type Config struct {
	User    UserConfig    `toml:"user"`
	Core    CoreConfig    `toml:"core"`
	Log     LogConfig     `toml:"log"`
	Signing SigningConfig `toml:"signing"`
}

// UserConfig is the identity written into new commits.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// CoreConfig holds object storage settings.
type CoreConfig struct {
	// Compression is the zlib level for new loose objects, -1 to 9.
	Compression int `toml:"compression"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// SigningConfig points at the SSH private key used by commit-tree -S.
type SigningConfig struct {
	Key string `toml:"key"`
}

// Default returns the configuration of a freshly initialized repository.
func Default() *Config {
	return &Config{
		Core: CoreConfig{Compression: zlib.DefaultCompression},
		Log:  LogConfig{Level: "info"},
	}
}

// Path returns the config file location inside repoPath.
func Path(repoPath string) string {
	return filepath.Join(repoPath, constants.Gogit, constants.ConfigFile)
}

// Load reads the repository config. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(repoPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(repoPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if name := os.Getenv(AuthorNameEnv); name != "" {
		c.User.Name = name
	}
	if email := os.Getenv(AuthorEmailEnv); email != "" {
		c.User.Email = email
	}
}

// Validate checks values the file format alone cannot constrain.
func (c *Config) Validate() error {
	if c.Core.Compression < zlib.DefaultCompression || c.Core.Compression > zlib.BestCompression {
		return fmt.Errorf("%w: core.compression %d out of range", ErrInvalidConfig, c.Core.Compression)
	}
	if strings.ContainsAny(c.User.Name, "<>\n") || strings.ContainsAny(c.User.Email, "<>\n") {
		return fmt.Errorf("%w: user name and email must not contain '<', '>' or newlines", ErrInvalidConfig)
	}
	return nil
}

// Save writes cfg to the repository config file.
func Save(repoPath string, cfg *Config) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(repoPath), buffer.Bytes(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Identity returns the "Name <email>" form used in commit headers.
func (c *Config) Identity() (string, error) {
	if c.User.Name == "" || c.User.Email == "" {
		return "", fmt.Errorf("author identity unknown: set [user] name and email in %s or %s/%s",
			constants.ConfigFile, AuthorNameEnv, AuthorEmailEnv)
	}
	return c.User.Name + " <" + c.User.Email + ">", nil
}
