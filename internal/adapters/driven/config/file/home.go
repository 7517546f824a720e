package file

import (
	"os"
	"path/filepath"
)

// EnvHome overrides the docmeta home directory.
const EnvHome = "DOCMETA_HOME"

// DefaultDir returns the directory holding config.toml, the prompts
// directory and the run database: $DOCMETA_HOME, or ~/.docmeta.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".docmeta"), nil
}
