// Package downloader materializes upstream clip candidates into the cache
// directory by driving yt-dlp as a subprocess. Success is decided by exit
// status plus a post-hoc directory scan, never by parsing tool output. The
// Fetcher interface is the testability seam between orchestration and
// process spawning; an in-flight registry guarantees at most one concurrent
// download per clip identity across requests.
package downloader
