// Command docmeta extracts structured metadata from documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmeta/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	if err := env.Load(env.DefaultFile); err != nil {
		logger.Warn("env.load: %v", err)
	}

	lookup := env.Lookup
	if dir, err := file.DefaultDir(); err == nil {
		if l, err := env.NewLookup(filepath.Join(dir, env.DefaultFile)); err != nil {
			logger.Warn("env.read: %v", err)
		} else {
			lookup = l
		}
	}

	if level, ok := lookup(env.EnvLogLevel); ok && !logger.SetLevelFromString(level) {
		logger.Warn("unknown %s %q", env.EnvLogLevel, level)
	}

	a, err := newApp(lookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	cli.SetVersion(version)
	cli.SetServices(a.services())

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
