// Package builtin registers the profiles shipped with docmeta.
package builtin

import (
	"sync"

	"github.com/custodia-labs/docmeta/internal/plugins"
	"github.com/custodia-labs/docmeta/internal/plugins/generic"
	"github.com/custodia-labs/docmeta/internal/plugins/sop"
)

var (
	registry *plugins.Registry
	once     sync.Once
)

// RegisterDefaults registers the sop and generic profiles.
func RegisterDefaults(r *plugins.Registry) error {
	if err := r.Register(sop.Name, sop.New); err != nil {
		return err
	}
	return r.Register(generic.Name, generic.New)
}

// Registry returns the process-wide profile registry. It is populated on
// first use and closed to further registrations.
func Registry() *plugins.Registry {
	once.Do(func() {
		registry = plugins.NewRegistry()
		// Built-in names are distinct, registration cannot fail.
		_ = RegisterDefaults(registry)
		registry.Close()
	})
	return registry
}
