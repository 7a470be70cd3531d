package validation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rezonia/etims-client/internal/model"
)

// Schema versions known to DefaultRegistry
const (
	VersionLegacy  = "1"
	VersionCurrent = "2"
	DefaultVersion = VersionCurrent
)

// Registry holds contracts by version and name. Contracts are immutable once
// registered; a name can only be registered once per version.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]map[string]*Contract
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]map[string]*Contract)}
}

// DefaultRegistry creates a registry with the full OSCU catalogue in both
// the legacy and the current schema version
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range []Profile{LegacyProfile(), CurrentProfile()} {
		for _, c := range Catalogue(p) {
			if err := r.Register(c); err != nil {
				panic(err)
			}
		}
	}
	return r
}

// Register adds a contract under its version and name
func (r *Registry) Register(c *Contract) error {
	if c == nil || c.Name == "" || c.Root == nil {
		return model.NewConfigurationError(model.ConfigKindContract, "", "contract needs a name and a root object rule")
	}
	version := c.Version
	if version == "" {
		version = DefaultVersion
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.contracts[version]
	if !ok {
		byName = make(map[string]*Contract)
		r.contracts[version] = byName
	}
	if _, exists := byName[c.Name]; exists {
		return model.NewConfigurationError(model.ConfigKindContract, c.Name,
			fmt.Sprintf("already registered for schema version %s", version))
	}
	byName[c.Name] = c
	return nil
}

// Lookup returns the contract for name in version; an empty version selects
// DefaultVersion
func (r *Registry) Lookup(version, name string) (*Contract, error) {
	if version == "" {
		version = DefaultVersion
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	byName, ok := r.contracts[version]
	if !ok {
		return nil, model.NewConfigurationError(model.ConfigKindContract, name,
			fmt.Sprintf("unknown schema version %q", version))
	}
	c, ok := byName[name]
	if !ok {
		return nil, model.NewConfigurationError(model.ConfigKindContract, name,
			fmt.Sprintf("no validation schema defined for %q", name))
	}
	return c, nil
}

// Names lists contract names of a version, sorted
func (r *Registry) Names(version string) []string {
	if version == "" {
		version = DefaultVersion
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.contracts[version]))
	for name := range r.contracts[version] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Versions lists registered schema versions, sorted
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.contracts))
	for v := range r.contracts {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
