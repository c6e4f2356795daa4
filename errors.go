package binhash

import "errors"

// Sentinel errors returned by Engine operations and Open. Callers should use
// errors.Is against these rather than matching error strings.
var (
	// ErrShardCountMismatch is returned by Open when the requested shard
	// count disagrees with the count persisted in the store's metadata.
	ErrShardCountMismatch = errors.New("binhash: shard count does not match store metadata")

	// ErrClosed is returned by Engine operations called after Close.
	ErrClosed = errors.New("binhash: engine is closed")
)
