// Package clip defines the clip record shared by every layer and the
// filename codec the cache directory hinges on. A cached file is named
// <id>-<sanitizedTitle>.mp4 and carries no sidecar metadata, so the parser
// and formatter here are the single source of truth for recovering clip
// identity and display title from disk. Keep the two halves symmetric:
// whatever BaseName produces, ParseFilename must decode.
package clip
