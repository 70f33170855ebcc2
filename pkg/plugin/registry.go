package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// ReporterFactory creates a fresh, uninitialised reporter.
type ReporterFactory func() Reporter

type registry[F any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]F
}

func newRegistry[F any](kind string) *registry[F] {
	return &registry[F]{kind: kind, factories: make(map[string]F)}
}

func (r *registry[F]) Register(name string, f F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("%s '%s' already registered", r.kind, name))
	}
	r.factories[name] = f
}

func (r *registry[F]) Get(name string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return f, fmt.Errorf("%s '%s' not found", r.kind, name)
	}
	return f, nil
}

func (r *registry[F]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every registration. Tests only.
func (r *registry[F]) Reset() {
	r.mu.Lock()
	r.factories = make(map[string]F)
	r.mu.Unlock()
}

var reporterReg = newRegistry[ReporterFactory]("reporter")

// RegisterReporter makes a reporter available by name. Registering the same
// name twice panics.
func RegisterReporter(name string, f ReporterFactory) {
	reporterReg.Register(name, f)
}

func GetReporterFactory(name string) (ReporterFactory, error) {
	return reporterReg.Get(name)
}

// ListReporters returns the registered names in sorted order.
func ListReporters() []string {
	return reporterReg.List()
}

// NewReporter builds the named reporter and initialises it with cfg.
func NewReporter(name string, cfg map[string]any) (Reporter, error) {
	factory, err := GetReporterFactory(name)
	if err != nil {
		return nil, err
	}
	r := factory()
	if err := r.Init(cfg); err != nil {
		return nil, fmt.Errorf("init reporter '%s': %w", name, err)
	}
	return r, nil
}
