// Package manifest loads declarative registrations from HCL, YAML or JSON
// files and replays them into a registry.
//
// # Format
//
//	group "plugins" {
//	  element = "plugin"
//	}
//
//	definition "dsn" {
//	  value = "postgres://localhost/app"
//	}
//
//	definition "db" {
//	  factory = "sql.open"
//	  args    = ["dsn"]
//	}
//
//	definition "echo" {
//	  group   = "plugins"
//	  factory = "plugin.echo"
//	}
//
// The same manifest in YAML:
//
//	groups:
//	  - id: plugins
//	    element: plugin
//	definitions:
//	  - id: dsn
//	    value: postgres://localhost/app
//	  - id: db
//	    factory: sql.open
//	    args: [dsn]
//	  - id: echo
//	    group: plugins
//	    factory: plugin.echo
//
// # Resolvers
//
// Factory and element names are looked up through a Resolver. A Catalog maps
// names to real factories and is used to build a runnable container. Stubs
// accepts every name and produces factory.Stub values, which is all the
// validator pipeline needs to lint a manifest on its own.
//
//	m, err := manifest.LoadFiles("base.hcl", "local.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := manifest.Apply(reg, m, catalog); err != nil {
//	    return err
//	}
//	c, err := reg.Compile()
package manifest
