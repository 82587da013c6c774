package di

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/kbukum/appkit/logger"
)

// Lifecycle determines when a registration's factory runs and whether its
// result is cached.
type Lifecycle int

const (
	// LifecycleSingleton holds an instance supplied at registration.
	LifecycleSingleton Lifecycle = iota
	// LifecycleLazySingleton runs the factory on first resolution and caches the result.
	LifecycleLazySingleton
	// LifecycleFactory runs the factory on every resolution.
	LifecycleFactory
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleSingleton:
		return "singleton"
	case LifecycleLazySingleton:
		return "lazy-singleton"
	case LifecycleFactory:
		return "factory"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

func (l Lifecycle) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Factory builds an instance of T. The container it receives resolves
// nested dependencies and carries the resolution path, so a cycle is
// reported even when the nested resolution happens on another goroutine.
// Resolving through a captured outer container on the factory's own
// goroutine is also checked.
type Factory[T any] func(c *Container) (T, error)

// RegistrationInfo describes a registration for introspection.
type RegistrationInfo struct {
	Type        string    `json:"type"`
	Name        string    `json:"name,omitempty"`
	Named       bool      `json:"named"`
	Lifecycle   Lifecycle `json:"lifecycle"`
	Cached      bool      `json:"cached"`
	Resolutions int64     `json:"resolutions"`
}

// typeKey identifies a registration. named separates Named("") from the
// unnamed registration of the same type.
type typeKey struct {
	typ   reflect.Type
	name  string
	named bool
}

func (k typeKey) String() string { return describe(k.typ, k.name, k.named) }

type entry struct {
	key       typeKey
	lifecycle Lifecycle
	factory   func(*Container) (any, error)

	// mu guards the Empty -> Populated transition of lazy singletons.
	mu       sync.RWMutex
	instance any
	cached   bool

	resolutions atomic.Int64
	// inflight counts factory invocations currently running for this entry.
	inflight atomic.Int32
}

func (e *entry) snapshot() (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.instance, e.cached
}

type registry struct {
	mu      sync.RWMutex
	entries map[typeKey]*entry
	log     *logger.Logger

	// chains holds the keys each goroutine is constructing, outermost first.
	chainMu sync.Mutex
	chains  map[uint64][]typeKey
}

func (r *registry) push(gid uint64, key typeKey) {
	r.chainMu.Lock()
	r.chains[gid] = append(r.chains[gid], key)
	r.chainMu.Unlock()
}

func (r *registry) pop(gid uint64) {
	r.chainMu.Lock()
	defer r.chainMu.Unlock()
	chain := r.chains[gid]
	if len(chain) <= 1 {
		delete(r.chains, gid)
		return
	}
	r.chains[gid] = chain[:len(chain)-1]
}

func (r *registry) chain(gid uint64) []typeKey {
	r.chainMu.Lock()
	defer r.chainMu.Unlock()
	return slices.Clone(r.chains[gid])
}

// goroutineID parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// Container is a type- and name-keyed registry of instances and factories.
//
// It is safe for concurrent use. Registration and lookup take a registry
// lock; construction of a lazy singleton only locks that entry, so
// unrelated resolutions never wait on each other.
type Container struct {
	reg *registry
	// path is the chain of keys being constructed when this value was
	// handed to a factory. Empty for the root container.
	path []typeKey
}

// New creates an empty container.
func New(opts ...ContainerOption) *Container {
	r := &registry{
		entries: make(map[typeKey]*entry),
		chains:  make(map[uint64][]typeKey),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("di")
	}
	return &Container{reg: r}
}

func keyFor[T any](o keyOptions) typeKey {
	return typeKey{typ: reflect.TypeFor[T](), name: o.name, named: o.named}
}

func (c *Container) register(e *entry, allowOverride bool) error {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	if _, exists := c.reg.entries[e.key]; exists {
		if !allowOverride {
			return &DuplicateRegistrationError{Type: e.key.typ, Name: e.key.name, Named: e.key.named}
		}
		c.reg.log.Debug("registration overridden", logger.Fields(
			logger.FieldType, e.key.String(),
			logger.FieldLifecycle, e.lifecycle.String(),
		))
	}
	c.reg.entries[e.key] = e
	return nil
}

func (c *Container) lookup(key typeKey) (*entry, bool) {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	e, ok := c.reg.entries[key]
	return e, ok
}

func (c *Container) resolve(key typeKey) (any, error) {
	if slices.Contains(c.path, key) {
		return nil, cycleError(c.path, key)
	}

	e, ok := c.lookup(key)
	if !ok {
		return nil, &DependencyNotFoundError{Type: key.typ, Name: key.name, Named: key.named}
	}
	e.resolutions.Add(1)

	// A factory for this entry is running. If it runs on this goroutine the
	// caller reached it through a container without the path, and waiting
	// on the entry lock would never return.
	if e.lifecycle != LifecycleSingleton && e.inflight.Load() > 0 {
		if chain := c.reg.chain(goroutineID()); slices.Contains(chain, key) {
			return nil, cycleError(chain, key)
		}
	}

	switch e.lifecycle {
	case LifecycleSingleton:
		return e.instance, nil
	case LifecycleFactory:
		return c.invoke(e)
	default:
		return c.resolveLazy(e)
	}
}

func (c *Container) resolveLazy(e *entry) (any, error) {
	if instance, cached := e.snapshot(); cached {
		return instance, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check: another goroutine may have populated it meanwhile.
	if e.cached {
		return e.instance, nil
	}

	instance, err := c.invoke(e)
	if err != nil {
		return nil, err
	}
	e.instance, e.cached = instance, true

	c.reg.log.Debug("lazy singleton constructed", logger.Fields(logger.FieldType, e.key.String()))
	return instance, nil
}

func (c *Container) invoke(e *entry) (any, error) {
	gid := goroutineID()
	e.inflight.Add(1)
	c.reg.push(gid, e.key)
	defer func() {
		c.reg.pop(gid)
		e.inflight.Add(-1)
	}()

	scope := &Container{reg: c.reg, path: append(slices.Clip(c.path), e.key)}
	instance, err := e.factory(scope)
	if err != nil {
		return nil, &ResolutionError{Type: e.key.typ, Name: e.key.name, Named: e.key.named, Cause: err}
	}
	return instance, nil
}

func cycleError(path []typeKey, key typeKey) *CyclicDependencyError {
	names := make([]string, 0, len(path)+1)
	for _, k := range path {
		names = append(names, k.String())
	}
	return &CyclicDependencyError{Path: append(names, key.String())}
}

// ResetLazySingletons drops every cached lazy-singleton instance. The
// registrations remain and the next resolution runs the factory again.
// Singleton and factory registrations are unaffected.
func (c *Container) ResetLazySingletons() {
	c.reg.mu.RLock()
	lazy := make([]*entry, 0, len(c.reg.entries))
	for _, e := range c.reg.entries {
		if e.lifecycle == LifecycleLazySingleton {
			lazy = append(lazy, e)
		}
	}
	c.reg.mu.RUnlock()

	for _, e := range lazy {
		e.mu.Lock()
		e.instance, e.cached = nil, false
		e.mu.Unlock()
	}
	c.reg.log.Debug("lazy singletons reset", logger.Fields(logger.FieldCount, len(lazy)))
}

// Reset removes every registration. Cached instances are dropped without
// being disposed.
func (c *Container) Reset() {
	c.reg.mu.Lock()
	n := len(c.reg.entries)
	c.reg.entries = make(map[typeKey]*entry)
	c.reg.mu.Unlock()

	c.reg.log.Debug("container reset", logger.Fields(logger.FieldCount, n))
}

// Len returns the number of registrations.
func (c *Container) Len() int {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return len(c.reg.entries)
}

// Registrations returns info about all registrations, sorted by type and name.
func (c *Container) Registrations() []RegistrationInfo {
	entries := c.sortedEntries()
	infos := make([]RegistrationInfo, 0, len(entries))
	for _, e := range entries {
		_, cached := e.snapshot()
		infos = append(infos, e.info(cached))
	}
	return infos
}

// Instances calls fn for every instance the container currently holds:
// singletons and populated lazy singletons, in Registrations order.
// Factories are never invoked. Iteration stops when fn returns false.
func (c *Container) Instances(fn func(info RegistrationInfo, instance any) bool) {
	for _, e := range c.sortedEntries() {
		instance, cached := e.snapshot()
		if !cached {
			continue
		}
		if !fn(e.info(true), instance) {
			return
		}
	}
}

func (c *Container) sortedEntries() []*entry {
	c.reg.mu.RLock()
	entries := make([]*entry, 0, len(c.reg.entries))
	for _, e := range c.reg.entries {
		entries = append(entries, e)
	}
	c.reg.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Or(
			cmp.Compare(formatType(a.key.typ), formatType(b.key.typ)),
			compareBool(a.key.named, b.key.named),
			cmp.Compare(a.key.name, b.key.name),
		)
	})
	return entries
}

func (e *entry) info(cached bool) RegistrationInfo {
	return RegistrationInfo{
		Type:        formatType(e.key.typ),
		Name:        e.key.name,
		Named:       e.key.named,
		Lifecycle:   e.lifecycle,
		Cached:      cached,
		Resolutions: e.resolutions.Load(),
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
