// Package env reads settings from the process environment and .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// DefaultFile is the dotenv file read from the working directory.
const DefaultFile = ".env"

// EnvLogLevel selects the log level (debug, info, warn, error).
const EnvLogLevel = "LOG_LEVEL"

// Lookup reads the process environment.
var Lookup domain.LookupFunc = os.LookupEnv

// Load exports the variables of the given dotenv files into the process
// environment. Variables already set are kept. Missing files are skipped.
// With no files, DefaultFile is loaded.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultFile}
	}
	for _, f := range existing(files) {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// NewLookup returns a lookup over the process environment layered on top
// of the given dotenv files. The process environment wins, then earlier
// files over later ones. The process environment is not modified.
func NewLookup(files ...string) (domain.LookupFunc, error) {
	values := make(map[string]string)
	found := existing(files)
	for i := len(found) - 1; i >= 0; i-- {
		m, err := godotenv.Read(found[i])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", found[i], err)
		}
		for k, v := range m {
			values[k] = v
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// MapLookup adapts a fixed map, for tests and embedded callers.
func MapLookup(m map[string]string) domain.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func existing(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		out = append(out, f)
	}
	return out
}
