package exchange

import (
	"errors"
	"fmt"
)

// Kind identifies why an exchange operation was rejected.
type Kind uint32

// Error codes are part of the external contract and must not be renumbered.
const (
	KindInvalidAmount         Kind = 700
	KindNotOwner              Kind = 701
	KindAlreadyInitialized    Kind = 702
	KindNotInitialized        Kind = 703
	KindInsufficientLiquidity Kind = 704
	KindZeroInput             Kind = 705
	KindLedgerTransferFailed  Kind = 706
	KindInsufficientShares    Kind = 707
)

func (k Kind) String() string {
	switch k {
	case KindInvalidAmount:
		return "invalid amount"
	case KindNotOwner:
		return "not owner"
	case KindAlreadyInitialized:
		return "already initialized"
	case KindNotInitialized:
		return "not initialized"
	case KindInsufficientLiquidity:
		return "insufficient liquidity"
	case KindZeroInput:
		return "zero input"
	case KindLedgerTransferFailed:
		return "ledger transfer failed"
	case KindInsufficientShares:
		return "insufficient shares"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Error is a tagged exchange failure. Two Errors match under errors.Is when
// their kinds are equal.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (u%d)", e.Kind, uint32(e.Kind))
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrInvalidAmount         = &Error{Kind: KindInvalidAmount}
	ErrNotOwner              = &Error{Kind: KindNotOwner}
	ErrAlreadyInitialized    = &Error{Kind: KindAlreadyInitialized}
	ErrNotInitialized        = &Error{Kind: KindNotInitialized}
	ErrInsufficientLiquidity = &Error{Kind: KindInsufficientLiquidity}
	ErrZeroInput             = &Error{Kind: KindZeroInput}
	ErrLedgerTransferFailed  = &Error{Kind: KindLedgerTransferFailed}
	ErrInsufficientShares    = &Error{Kind: KindInsufficientShares}
)

// Coder is implemented by collaborator errors that carry their own numeric code.
type Coder interface {
	Code() uint32
}

// Code returns the numeric code of the first coded error in err's chain, or 0.
// Exchange kinds take precedence over codes carried by wrapped ledger errors.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	var exErr *Error
	if errors.As(err, &exErr) {
		return uint32(exErr.Kind)
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.Code()
	}
	return 0
}

// ledgerFailure wraps a collaborator error so it matches ErrLedgerTransferFailed
// while keeping the underlying cause reachable.
func ledgerFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrLedgerTransferFailed, err)
}
