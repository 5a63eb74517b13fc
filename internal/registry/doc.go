// Package registry holds the ground-motion prediction equations compiled
// into the binary. Each equation package self-registers through the
// Module interface; the app validates at startup that every GMPE named
// by the job's logic trees resolves to a registered implementation.
package registry
