// Package registry is the build-time half of the container: it records named
// definitions and groups, keeps an audit trail of overridden definitions, and
// runs a pipeline of static validators before anything is constructed.
//
// # Lifecycle
//
//  1. Create: r := registry.New()
//  2. Register: r.RegisterOne("db", factory.Func(openDB), "dsn")
//  3. Compile: c, err := r.Compile()  // every diagnostic at once, or a container
//
// # Definitions and groups
//
//	r.RegisterOne("dsn", factory.Value("postgres://localhost/app"))
//	r.RegisterOne("db", factory.Func(openDB), "dsn")
//
//	// Members of a group; the group is declared on first use and its element
//	// type is inferred from the member's factory.
//	r.RegisterOneOf("handlers", "health", factory.Func(newHealth))
//	r.RegisterOneOf("handlers", "users", factory.Func(newUsers), "db")
//
//	// Declaring a group up front lets it stay empty.
//	registry.HasMany[Handler](r, "handlers")
//
// # Builders
//
//	r.One("server", factory.Func(newServer)).
//	    WithArg("handlers").
//	    WithArg("db").
//	    Insert()
//
// # Overrides
//
// Registering an id twice is allowed and the last registration wins, but the
// displaced candidate is kept in the override log and NoOverridesValidator
// fails the compile until the caller opts in with AllowOverrides.
//
// # Validators
//
// New installs ArgumentCountValidator, NoOverridesValidator and
// DependencyValidator, in that order. CycleValidator and
// NamespaceCollisionValidator are available but opt-in:
//
//	r.PushValidator(registry.CycleValidator{})
package registry
