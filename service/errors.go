package service

import "errors"

var (
	ErrNotFound     = errors.New("service: event not found")
	ErrInvalidQuery = errors.New("service: invalid query")
	ErrIndexExists  = errors.New("service: index already registered")
)
