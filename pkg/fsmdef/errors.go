package fsmdef

import "errors"

var (
	ErrDecode         = errors.New("failed to decode state machine definition")
	ErrEmptyDocument  = errors.New("state machine definition is empty")
	ErrUnknownHandler = errors.New("transition references an unknown handler")
	ErrReadFile       = errors.New("failed to read state machine definition file")
)
