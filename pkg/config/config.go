package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// ErrInvalid marks every failure to assemble configuration. It is fatal at
// startup and never returned from a pipeline stage.
var ErrInvalid = errors.New("invalid configuration")

var (
	envFilePath string
	envMu       sync.Mutex
	loaded      = map[string]bool{}
)

// SetEnvFile selects the .env file exported before struct processing.
// An empty path falls back to ./.env when present.
func SetEnvFile(path string) {
	envMu.Lock()
	defer envMu.Unlock()
	envFilePath = strings.TrimSpace(path)
}

func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return &conf, nil
}

func loadEnvFile() error {
	envMu.Lock()
	defer envMu.Unlock()

	filepath := envFilePath
	if filepath != "" {
		if loaded[filepath] {
			return nil
		}
		if err := exportEnvironment(filepath); err != nil {
			return fmt.Errorf("%w: failed to load env file: %v", ErrInvalid, err)
		}
		loaded[filepath] = true
		return nil
	}

	if loaded[".env"] {
		return nil
	}
	if err := exportEnvironmentIfExists(".env"); err != nil {
		return fmt.Errorf("%w: failed to load default env file: %v", ErrInvalid, err)
	}
	loaded[".env"] = true
	return nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

// exportEnvironment copies the file's keys into the process environment.
// Variables already set in the environment win over the file.
func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
