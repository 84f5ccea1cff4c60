package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/moasaja/moasaja/api"
)

// Manager keeps named filter presets, typically loaded from configuration
type Manager struct {
	compiler  Compiler
	evaluator Evaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator Evaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  NewExprCompiler(WithCache(100)),
		evaluator: defaultEvaluator,
		filters:   make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Compile compiles an ad-hoc expression with the manager's compiler
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// RegisterFilters compiles and registers presets. Nothing is registered if any
// of them fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		filter, err := m.compiler.Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[strings.ToLower(name)] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a preset by name, ignoring case
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	filter, exists := m.filters[strings.ToLower(name)]
	return filter, exists
}

// ListFilters returns the registered preset names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.filters))
}

// EvaluateFilter applies a registered preset to posts
func (m *Manager) EvaluateFilter(ctx context.Context, name string, posts []api.Post) ([]api.Post, error) {
	filter, exists := m.GetFilter(name)
	if !exists {
		return nil, &UnknownPresetError{Name: name}
	}
	return m.evaluator.Evaluate(ctx, filter, posts)
}

// Evaluate applies an ad-hoc expression to posts
func (m *Manager) Evaluate(ctx context.Context, expression string, posts []api.Post) ([]api.Post, error) {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return nil, err
	}
	return m.evaluator.Evaluate(ctx, filter, posts)
}
