// Package cliconfig loads runtime settings from defaults, an optional
// YAML file, and DBBRIDGE_-prefixed environment variables, in that
// order of precedence (later wins).
package cliconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opendevtool/dbbridge/pkg/config"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "dbbridge.yaml"

const envPrefix = "DBBRIDGE_"

// Load builds the runtime configuration. cfgFile may be empty, in which
// case dbbridge.yaml is used if present; a missing default file is not an
// error, a missing explicit file is.
func Load(cfgFile string) (*config.Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		config.KeyOperationTimeout: "30s",
		config.KeyMaxConcurrentOps: "32",
		config.KeyDefaultPageLimit: "50",
		config.KeyStorePath:        ".",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultFileName); err == nil {
			path = DefaultFileName
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables
	// Transform: DBBRIDGE_BRIDGE__OPERATION_TIMEOUT -> bridge.operation_timeout
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	cfg := config.New()
	values := make(map[string]string)
	for key, v := range k.All() {
		values[key] = fmt.Sprintf("%v", v)
	}
	cfg.Update(values)
	return cfg, nil
}
