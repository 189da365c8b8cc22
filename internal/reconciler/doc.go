// Package reconciler decides when the on-disk cache suffices and, when it
// does not, merges fresh upstream candidates into it. The fast path serves
// straight from the directory scan without touching upstream or spawning
// any subprocess; the slow path seeds the accumulator with the full cache,
// suppresses duplicates by clip identity, downloads candidates sequentially
// up to a hard cap and swallows per-item failures. Only precondition
// failures (credentials, user lookup, clip listing) abort a request.
package reconciler
