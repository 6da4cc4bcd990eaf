package types

import "errors"

// Failure classes shared by every stage of the pipeline. Stages wrap these
// together with the underlying cause so both can be matched with errors.Is.
var (
	ErrFileSystem       = errors.New("file system error")
	ErrExtraction       = errors.New("pdf extraction error")
	ErrWrite            = errors.New("write error")
	ErrCollectionExists = errors.New("collection already exists")
	ErrEmbedding        = errors.New("embedding error")
)

// Domain errors for type validation
var (
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrInvalidPage  = errors.New("page must be >= 1")
)

// Wrap joins a failure class with its cause and a short context message
func Wrap(class error, msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return &classified{class: class, msg: msg, cause: cause}
}

type classified struct {
	class error
	msg   string
	cause error
}

func (e *classified) Error() string {
	return e.msg + ": " + e.cause.Error()
}

func (e *classified) Unwrap() []error {
	return []error{e.class, e.cause}
}
