package dataset

import (
	"fmt"
	"sort"
	"sync"
)

// OpenFunc opens a raw dataset rooted at source. It fails if source does
// not point to an existing directory or the metadata file cannot be parsed.
type OpenFunc func(source string) (RawDataset, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]OpenFunc)
)

// Register makes an adapter available under the given generation name.
// It panics if called twice with the same name, like database/sql driver
// registration.
func Register(name string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("dataset: Register called twice for adapter " + name)
	}
	registry[name] = open
}

// Open opens the dataset at source with the named adapter.
func Open(name, source string) (RawDataset, error) {
	registryMu.RLock()
	open, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown dataset adapter %q (registered: %v)", name, Adapters())
	}
	return open(source)
}

// Adapters returns the registered adapter names, sorted.
func Adapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
