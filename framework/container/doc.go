// Package container is the runtime side of the wiring engine: it holds the
// definitions and groups of a compiled registry and builds them on demand.
//
// A Container is never assembled by hand. registry.Compile validates the
// registry and hands every live definition and declared group over in one
// step, so anything a Container can see has already passed the validator
// pipeline.
//
// # Resolving
//
//	c, err := reg.Compile()
//	if err != nil {
//	    return err // *registry.CompileErrors
//	}
//
//	// Untyped
//	raw, err := c.Make("cache")
//
//	// Generic (preferred, no type assertion required)
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//
// # Singletons
//
// Every definition is a singleton. Its factory runs on the first Make that
// reaches it, directly or as someone's argument, and the instance is cached.
//
// # Groups
//
// An argument that names a group receives the collection of the group's
// members, built through the group's factory.Aggregate. Members are resolved
// in sorted id order:
//
//	registry.HasMany[http.Handler](reg, "handlers")
//	reg.OneOf("handlers", "users", factory.Func(newUsers)).Insert()
//	reg.One("router", factory.Func(newRouter)).WithArg("handlers").Insert()
//
//	router := container.MustResolve[*Router](c, "router") // newRouter([]http.Handler{users})
//
// When an id is both a definition and a group, the definition wins.
//
// # Errors
//
// Make reports *NotFoundError for unknown ids, *CycleError for a definition
// that needs itself, and *FactoryError when a constructor fails.
package container
