package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v8"
	"gopkg.in/yaml.v3"
)

// ---------------------------

const PAIRDIST_CONFIG = "PAIRDIST_CONFIG"

type ConfigMap struct {
	// Global debug flag
	Debug bool `yaml:"debug"`
	// Pretty log output
	PrettyLogOutput bool `yaml:"prettyLogOutput"`
	// Distance strategy, direct or expansion
	Strategy string `yaml:"strategy"`
	// Maximum concurrent tiles, 0 uses GOMAXPROCS
	Workers int `yaml:"workers"`
	// Rows of X per tile
	TileRows int `yaml:"tileRows"`
	// Refuse outputs with more elements than this, 0 disables the check
	MaxElements int `yaml:"maxElements"`
	// Result cache location, empty disables caching
	CacheFile string `yaml:"cacheFile"`
	// Show a progress bar while computing
	Progress bool `yaml:"progress"`
}

func DefaultConfig() ConfigMap {
	return ConfigMap{
		PrettyLogOutput: true,
		Strategy:        "expansion",
		TileRows:        256,
	}
}

// LoadConfig starts from the defaults, applies the yaml file pointed to by
// PAIRDIST_CONFIG if set and finally environment variables such as
// PAIRDIST_WORKERS or PAIRDIST_CACHE_FILE.
func LoadConfig() (ConfigMap, error) {
	configMap := DefaultConfig()
	// ---------------------------
	if cFilePath, ok := os.LookupEnv(PAIRDIST_CONFIG); ok {
		cFile, err := os.Open(cFilePath)
		if err != nil {
			return configMap, fmt.Errorf("failed to open config file %s: %w", cFilePath, err)
		}
		defer cFile.Close()
		decoder := yaml.NewDecoder(cFile)
		decoder.KnownFields(true)
		// An empty file leaves the defaults in place.
		if err := decoder.Decode(&configMap); err != nil && !errors.Is(err, io.EOF) {
			return configMap, fmt.Errorf("failed to parse config file %s: %w", cFilePath, err)
		}
	}
	// ---------------------------
	// Then parse environment variables
	opts := env.Options{Prefix: "PAIRDIST_", UseFieldNameByDefault: true}
	if err := env.ParseWithOptions(&configMap, opts); err != nil {
		return configMap, fmt.Errorf("failed to parse env: %w", err)
	}
	return configMap, nil
}
