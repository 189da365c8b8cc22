// Package store treats the clips directory as the single source of truth
// for "what is cached". It exposes read (List), post-download resolution
// (ResolveDownload), delete (Remove) and retention (Sweep) primitives so
// higher layers never touch the filesystem directly, which keeps the
// reconciliation logic testable against an in-memory double. No index file
// is persisted: every catalog is derived from a fresh directory scan.
package store
