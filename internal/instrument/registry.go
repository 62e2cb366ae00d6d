package instrument

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
)

// Instrument ids understood out of the box.
const (
	DefaultID = core.DefaultInstrument
	LogID     = "log"
)

// Factory opens an instrument for the name after a registered prefix.
type Factory func(name string) (core.Instrument, error)

// Registry resolves instrument ids. Instruments built by factories are
// cached, and so are ids that failed to open.
type Registry struct {
	mu        sync.Mutex
	byID      map[string]core.Instrument
	failed    map[string]struct{}
	factories map[string]Factory
	logger    *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger and registers the "log" instrument.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
		r.byID[LogID] = NewLogging(l)
	}
}

// WithDefault replaces the instrument used for "default" and unknown ids.
func WithDefault(inst core.Instrument) RegistryOption {
	return func(r *Registry) {
		r.byID[DefaultID] = inst
	}
}

// NewRegistry returns a registry whose default instrument is silent.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byID:      map[string]core.Instrument{DefaultID: Silent{}},
		failed:    make(map[string]struct{}),
		factories: make(map[string]Factory),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds id to inst.
func (r *Registry) Register(id string, inst core.Instrument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = inst
	delete(r.failed, id)
}

// RegisterFactory makes ids of the form "<prefix>:<name>" resolvable.
func (r *Registry) RegisterFactory(prefix string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[prefix] = f
}

// Resolve returns the instrument for id.
func (r *Registry) Resolve(id string) (core.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.byID[id]; ok {
		return inst, nil
	}
	prefix, name, ok := strings.Cut(id, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %s", staveerrors.ErrUnknownInstrument, id)
	}
	f, ok := r.factories[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", staveerrors.ErrUnknownInstrument, id)
	}
	inst, err := f(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open instrument %s: %w", id, err)
	}
	r.byID[id] = inst
	return inst, nil
}

// Instrument resolves id, falling back to the default instrument. A failed
// id warns once and keeps using the default until it is registered.
func (r *Registry) Instrument(id string) core.Instrument {
	r.mu.Lock()
	_, failed := r.failed[id]
	r.mu.Unlock()
	if failed {
		return r.fallback()
	}

	inst, err := r.Resolve(id)
	if err != nil {
		r.logger.Warn("using default instrument", zap.String("id", id), zap.Error(err))
		r.mu.Lock()
		r.failed[id] = struct{}{}
		r.mu.Unlock()
		return r.fallback()
	}
	return inst
}

func (r *Registry) fallback() core.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[DefaultID]
}

// IDs lists the instruments opened or registered so far.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every instrument that holds a resource.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for id, inst := range r.byID {
		if c, ok := inst.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
		}
	}
	return errors.Join(errs...)
}
