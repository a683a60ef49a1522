// Package config resolves the Figma API key and the other runtime
// settings of the server, and keeps the key current while it runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
)

// EnvAPIKey is the environment variable consulted when no flag is given.
const EnvAPIKey = "FIGMA_API_TOKEN"

// EnvPrefix prefixes the environment form of every other flag,
// e.g. FIGMA_MCP_LOG_LEVEL.
const EnvPrefix = "FIGMA_MCP"

// FlagAPIKey is the name of the API key flag and config file entry.
const FlagAPIKey = "figma-api-key"

// EnvFlagAPIKey is the env form ff derives from FlagAPIKey and EnvPrefix.
const EnvFlagAPIKey = EnvPrefix + "_FIGMA_API_KEY"

// ErrNoAPIKey is returned when no source provides a key.
var ErrNoAPIKey = errors.New("Figma API token not provided. Please set FIGMA_API_TOKEN environment variable or use --figma-api-key.")

// Source identifies where the API key came from.
type Source string

const (
	SourceNone       Source = "none"
	SourceFlag       Source = "flag"
	SourceEnv        Source = "environment"
	SourceConfigFile Source = "config file"
	SourceKeyring    Source = "credential store"
)

// KeyGetter reads a stored key. Implemented by *Credentials.
type KeyGetter interface {
	Get() (string, error)
}

// ResolveOptions lists the candidate key sources.
type ResolveOptions struct {
	// FlagKey is the value of --figma-api-key after flag, env and config
	// file parsing.
	FlagKey string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Credentials is consulted last. Nil skips the credential store.
	Credentials KeyGetter
}

// Resolve picks the API key: flag, then FIGMA_API_TOKEN, then the
// credential store. An unusable credential store (no Secret Service on a
// headless box, a locked keychain) counts as holding no key; its error is
// folded into the returned ErrNoAPIKey.
func Resolve(opts ResolveOptions) (string, Source, error) {
	if key := strings.TrimSpace(opts.FlagKey); key != "" {
		return key, SourceFlag, nil
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := strings.TrimSpace(getenv(EnvAPIKey)); key != "" {
		return key, SourceEnv, nil
	}

	if opts.Credentials != nil {
		key, err := opts.Credentials.Get()
		if err == nil {
			return key, SourceKeyring, nil
		}
		if !errors.Is(err, ErrNoStoredKey) {
			return "", SourceNone, fmt.Errorf("%w (%v)", ErrNoAPIKey, err)
		}
	}

	return "", SourceNone, ErrNoAPIKey
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/figma-mcp/config.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "figma-mcp", "config")
}

// ReadConfigValues parses a plain config file (one "name value" pair per
// line, # comments) into a map.
func ReadConfigValues(path string) (map[string]string, error) {
	f, err := os.Open(path) // #nosec G304 - path is supplied by the user
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := map[string]string{}
	err = ff.PlainParser(f, func(name, value string) error {
		values[name] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return values, nil
}

// ReadConfigKey returns the figma-api-key entry of a config file, or ""
// when the file has none.
func ReadConfigKey(path string) (string, error) {
	values, err := ReadConfigValues(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(values[FlagAPIKey]), nil
}
