package qrl

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// QRL is a lazily resolvable reference to a function-like value.
// Instead of holding a live closure, a QRL names its target by
// (chunk, symbol) so the same reference can be re-materialized after the
// code that created it has left scope. Captured arguments travel with the
// reference and are handed back to the target on invocation.
//
// A QRL created with FromFunc carries its value directly and never touches
// the registry. Such references are session-local: they cannot be
// re-materialized by identity.
type QRL struct {
	chunk  string
	symbol string

	// hash is a stable 64-bit identity derived from chunk#symbol.
	hash uint64

	captured []any

	mu       sync.Mutex
	resolved any
	inline   bool
}

// New creates a QRL that resolves through the symbol registry on first use.
func New(chunk, symbol string, captured ...any) *QRL {
	return &QRL{
		chunk:    chunk,
		symbol:   symbol,
		hash:     symbolHash(chunk, symbol),
		captured: captured,
	}
}

// FromFunc creates an inline QRL wrapping an already-resolved value.
// The symbol is kept for identity and logging only.
func FromFunc(symbol string, value any, captured ...any) *QRL {
	return &QRL{
		symbol:   symbol,
		hash:     symbolHash("", symbol),
		captured: captured,
		resolved: value,
		inline:   true,
	}
}

// Chunk returns the module chunk this reference points into.
func (q *QRL) Chunk() string { return q.chunk }

// Symbol returns the exported symbol name.
func (q *QRL) Symbol() string { return q.symbol }

// Hash returns the stable identity of this reference.
func (q *QRL) Hash() uint64 { return q.hash }

// Captured returns the arguments captured at creation time.
func (q *QRL) Captured() []any { return q.captured }

// Resolve returns the referenced value, loading it from the registry if it
// has not been materialized yet. Resolution is cached.
func (q *QRL) Resolve() (any, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.resolved != nil {
		return q.resolved, nil
	}

	v, ok := lookup(q.chunk, q.symbol)
	if !ok {
		return nil, fmt.Errorf("qrl: symbol %s#%s is not registered", q.chunk, q.symbol)
	}
	q.resolved = v
	return v, nil
}

// String implements fmt.Stringer for logging.
func (q *QRL) String() string {
	if q.inline {
		return fmt.Sprintf("qrl(%s)", q.symbol)
	}
	return fmt.Sprintf("qrl(%s#%s)", q.chunk, q.symbol)
}

func symbolHash(chunk, symbol string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(chunk)
	_, _ = d.WriteString("#")
	_, _ = d.WriteString(symbol)
	return d.Sum64()
}

// =============================================================================
// Symbol registry
// =============================================================================

var (
	registryMu sync.RWMutex
	registry   = map[string]any{}
)

// RegisterSymbol makes a value resolvable by (chunk, symbol).
// Registering the same pair twice replaces the previous value; modules
// typically register their symbols from init functions.
func RegisterSymbol(chunk, symbol string, value any) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[chunk+"#"+symbol] = value
}

// UnregisterSymbol removes a registered symbol. Used by tests.
func UnregisterSymbol(chunk, symbol string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, chunk+"#"+symbol)
}

func lookup(chunk, symbol string) (any, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	v, ok := registry[chunk+"#"+symbol]
	return v, ok
}
