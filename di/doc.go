// Package di provides a type-keyed dependency injection container.
//
// Registrations are explicit and keyed by the static type parameter plus an
// optional name. Three lifecycles are supported: singletons supplied at
// registration, lazy singletons built on first use, and factories called on
// every resolution. Factories receive the container so they can resolve
// their own dependencies; a factory that ends up resolving itself fails
// with a CyclicDependencyError, whether it resolves through the container
// it was given or through one it captured. The one cycle left undetected is
// a factory that hands resolution of its own key to another goroutine
// through a captured container and waits for it: that deadlocks.
//
// # Registration
//
//	c := di.New()
//	_ = di.RegisterSingleton[Clock](c, realClock{})
//	_ = di.RegisterLazySingleton(c, func(c *di.Container) (*UserRepo, error) {
//	    db, err := di.Get[*sql.DB](c)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewUserRepo(db), nil
//	})
//	_ = di.RegisterSingleton(c, primaryDB, di.Named("primary"))
//
// # Resolution
//
//	repo, err := di.Get[*UserRepo](c)
//	clock := di.MustGet[Clock](c)
//	cache, ok, err := di.TryGet[Cache](c)
//
// The container never disposes what it holds. Reset and Unregister drop
// instances; closing them is the job of shutdown hooks.
package di
