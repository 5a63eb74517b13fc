// Package hcl provides the concrete HCL implementation of the job
// loading interface defined in the config package. It is responsible
// for file parsing, decoding into the schema structs, and translation
// into the format-agnostic model.
package hcl
