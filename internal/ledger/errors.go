package ledger

import (
	"errors"
	"fmt"
)

// Error is a token ledger failure carrying the token's numeric error code.
type Error struct {
	code uint32
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (u%d)", e.msg, e.code)
}

// Code returns the numeric error code.
func (e *Error) Code() uint32 {
	return e.code
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.code == e.code
}

var (
	ErrNotTokenOwner       = &Error{code: 901, msg: "not token owner"}
	ErrInsufficientBalance = &Error{code: 902, msg: "insufficient balance"}
	ErrInvalidAmount       = &Error{code: 903, msg: "invalid amount"}
	ErrSupplyOverflow      = &Error{code: 904, msg: "supply overflow"}
)
