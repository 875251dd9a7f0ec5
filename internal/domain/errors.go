package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("menu source unavailable")
	ErrMalformedPayload  = errors.New("malformed menu payload")
	ErrMalformedRecord   = errors.New("malformed beer record")
)
