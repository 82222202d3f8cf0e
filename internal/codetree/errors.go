package codetree

import "errors"

// Sentinel errors returned by tree operations. Callers match them with
// errors.Is; the wrapped message carries the specifics.
var (
	// ErrNotFound is returned when a label does not address any node.
	ErrNotFound = errors.New("node not found")

	// ErrParse is returned when a fragment does not parse.
	ErrParse = errors.New("parse error")

	// ErrKindMismatch is returned when a replacement construct cannot take
	// the place of the target node.
	ErrKindMismatch = errors.New("kind mismatch")

	// ErrCardinality is returned when a fragment holds the wrong number of
	// top-level constructs for the operation.
	ErrCardinality = errors.New("wrong number of constructs")

	// ErrIO wraps filesystem failures on create, delete and write.
	ErrIO = errors.New("filesystem error")

	// ErrRootDelete is returned for any attempt to delete label "0".
	ErrRootDelete = errors.New("cannot delete root")

	// ErrUnsupported is returned when the operation does not apply to the
	// addressed node (for example inserting a child into a statement).
	ErrUnsupported = errors.New("unsupported operation")
)
