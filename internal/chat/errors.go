package chat

import "errors"

// ErrEmptyMessage is returned for messages with no text body.
var ErrEmptyMessage = errors.New("empty message")
