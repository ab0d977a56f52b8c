package rag

import "errors"

// Per-request failure classes. Handlers map these to responses; neither may
// crash the serving process, and a generation failure must never be
// followed by a history save.
var (
	ErrRetrieval  = errors.New("retrieval failed")
	ErrGeneration = errors.New("generation failed")
)
