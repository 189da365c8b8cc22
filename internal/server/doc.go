// Package server wires the Fiber application: clip fetching, cache listing,
// retention cleanup and the health probe, plus static serving of the cache
// directory itself. Handlers stay thin — parameter parsing and status
// mapping only — and depend on the reconciler and store through small
// interfaces so route tests can run against fakes.
package server
