package core

import "errors"

var (
	ErrInvalidMessage       = errors.New("invalid message")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrIndexOutOfRange      = errors.New("action item index out of range")
	ErrActionItemNotFound   = errors.New("action item not found")
	ErrGeneratorUnavailable = errors.New("text generator unavailable")
)
