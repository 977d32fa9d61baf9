package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvAPIToken overrides fessApiToken when set.
const EnvAPIToken = "FESS_MCP_API_TOKEN"

// ErrNotFound indicates no configuration file exists at the resolved path.
var ErrNotFound = errors.New("configuration file not found")

// candidates are tried in order when no explicit path is given.
var candidates = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// DefaultDir returns ~/.fess-mcp.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fess-mcp"), nil
}

// Resolve returns the configuration path to use. An explicit path wins;
// otherwise the first existing candidate in dir, falling back to config.toml.
func Resolve(path, dir string) string {
	if path != "" {
		return path
	}
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, candidates[0])
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (create it with at least fessBaseUrl and a [domain] id)", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tok := os.Getenv(EnvAPIToken); tok != "" {
		cfg.FessAPIToken = tok
	}

	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults. ext selects the format
// (".toml", ".yaml", ".yml", ".json", ".jsonc"); empty means TOML.
// The result is neither normalised nor validated.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case "", ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return &cfg, nil
}

// Save writes the configuration as TOML with owner-only permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// normalise applies the load-time adjustments that are not errors.
func (c *Config) normalise() {
	c.FessBaseURL = strings.TrimRight(strings.TrimSpace(c.FessBaseURL), "/")
	c.Domain.ID = strings.TrimSpace(c.Domain.ID)
	if c.Domain.Name == "" {
		c.Domain.Name = c.Domain.ID
	}

	if c.DefaultLabel == "" {
		c.DefaultLabel = c.Domain.LabelFilter
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = "all"
	}

	schemes := make([]string, 0, len(c.ContentFetch.AllowedSchemes))
	for _, s := range c.ContentFetch.AllowedSchemes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == "file" {
			continue
		}
		schemes = append(schemes, s)
	}
	c.ContentFetch.AllowedSchemes = schemes

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.HTTPTransport.Path == "" {
		c.HTTPTransport.Path = "/mcp"
	}
	if !strings.HasPrefix(c.HTTPTransport.Path, "/") {
		c.HTTPTransport.Path = "/" + c.HTTPTransport.Path
	}
}
