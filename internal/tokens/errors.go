package tokens

import "gitlab.com/tozd/go/errors"

var (
	// ErrInvalidInputKind is returned when a document is not a plain key to node mapping.
	ErrInvalidInputKind = errors.Base("invalid input kind")

	// ErrMissingNodeData is returned when a key is present but carries no node.
	ErrMissingNodeData = errors.Base("missing node data")

	// ErrUnknownNodeKey is returned when a key is absent from the document.
	ErrUnknownNodeKey = errors.Base("unknown node key")

	// ErrDegradedRootInference signals that the root key was guessed. It is a
	// warning, not a failure: processing continues with the guessed key.
	ErrDegradedRootInference = errors.Base("degraded root inference")
)
