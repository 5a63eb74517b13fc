// Package config defines the format-agnostic model of a hazard job,
// along with the Loader interface for reading it from configuration
// sources. The model is the single source of truth for the engine;
// the concrete HCL implementation lives in the hcl package.
package config
