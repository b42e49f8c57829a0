package features

import "errors"

var (
	ErrMalformedPost     = errors.New("malformed post")
	ErrUnknownSubreddit  = errors.New("unknown subreddit")
	ErrLengthMismatch    = errors.New("feature length mismatch")
	ErrEmptyBatch        = errors.New("empty batch")
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
)
