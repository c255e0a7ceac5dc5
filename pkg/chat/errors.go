package chat

import "errors"

// Collaborator failure taxonomy. Timeouts get their own sentinels so the
// transport layer can answer 504 instead of a generic upstream error.
var (
	ErrRetrieval         = errors.New("retrieval failed")
	ErrRetrievalTimeout  = errors.New("retrieval timed out")
	ErrCompletion        = errors.New("completion failed")
	ErrCompletionTimeout = errors.New("completion timed out")
)
