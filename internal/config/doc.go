// Package config defines the format-agnostic model of a rig description,
// along with the Loader interface for reading it from various sources.
//
// The `config.Model` is the single source of truth for the `app` package.
// Concrete loaders, such as for HCL, are provided in separate packages.
package config
