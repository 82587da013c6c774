package di

import "fmt"

// RegisterSingleton stores an already constructed instance under T.
//
// Example:
//
//	err := di.RegisterSingleton[Clock](c, realClock{})
func RegisterSingleton[T any](c *Container, instance T, opts ...Option) error {
	o := applyOptions(opts)
	return c.register(&entry{
		key:       keyFor[T](o),
		lifecycle: LifecycleSingleton,
		instance:  instance,
		cached:    true,
	}, o.allowOverride)
}

// RegisterLazySingleton stores a factory whose result is built on the first
// Get and reused afterwards. The factory is not called here. A failed
// construction is not cached; the next Get tries again.
func RegisterLazySingleton[T any](c *Container, factory Factory[T], opts ...Option) error {
	o := applyOptions(opts)
	return c.register(&entry{
		key:       keyFor[T](o),
		lifecycle: LifecycleLazySingleton,
		factory:   erase(factory),
	}, o.allowOverride)
}

// RegisterFactory stores a factory that is called on every Get.
func RegisterFactory[T any](c *Container, factory Factory[T], opts ...Option) error {
	o := applyOptions(opts)
	return c.register(&entry{
		key:       keyFor[T](o),
		lifecycle: LifecycleFactory,
		factory:   erase(factory),
	}, o.allowOverride)
}

func erase[T any](factory Factory[T]) func(*Container) (any, error) {
	return func(c *Container) (any, error) {
		v, err := factory(c)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Get resolves T, applying its registration's lifecycle.
//
// Example:
//
//	repo, err := di.Get[UserRepository](c)
//	if err != nil {
//	    return fmt.Errorf("failed to get user repository: %w", err)
//	}
func Get[T any](c *Container, opts ...Option) (T, error) {
	var zero T
	key := keyFor[T](applyOptions(opts))
	instance, err := c.resolve(key)
	if err != nil {
		return zero, err
	}
	// A nil interface value stored under an interface type.
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %s holds %T", key, instance)
	}
	return result, nil
}

// MustGet resolves T and panics on failure.
func MustGet[T any](c *Container, opts ...Option) T {
	result, err := Get[T](c, opts...)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryGet resolves T when it is registered. It reports ok=false only when
// T itself is not registered; every other failure, including a missing
// nested dependency or a failing factory, is returned as an error.
//
// Example:
//
//	if metrics, ok, err := di.TryGet[MetricsClient](c); err != nil {
//	    return err
//	} else if ok {
//	    metrics.RecordEvent(...)
//	}
func TryGet[T any](c *Container, opts ...Option) (T, bool, error) {
	result, err := Get[T](c, opts...)
	if err == nil {
		return result, true, nil
	}
	// Only the top-level key surfaces unwrapped; nested lookups are
	// wrapped in a ResolutionError by the factory that made them.
	if _, notFound := err.(*DependencyNotFoundError); notFound {
		return result, false, nil
	}
	return result, false, err
}

// IsRegistered reports whether T is registered. It never runs a factory.
func IsRegistered[T any](c *Container, opts ...Option) bool {
	_, ok := c.lookup(keyFor[T](applyOptions(opts)))
	return ok
}

// Unregister removes the registration of T and reports whether there was
// one. Cached instances are dropped without being disposed.
func Unregister[T any](c *Container, opts ...Option) bool {
	key := keyFor[T](applyOptions(opts))
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	if _, ok := c.reg.entries[key]; !ok {
		return false
	}
	delete(c.reg.entries, key)
	return true
}
