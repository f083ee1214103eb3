package protector

import (
	"errors"
	"fmt"

	"toorak_vpn/internal/model"
)

// Kind separates failures a caller can act on from broken invariants.
type Kind string

const (
	// KindDecryption: the ciphertext cannot be read under the supplied tier
	// key, or its contents are malformed.
	KindDecryption Kind = "Decryption"
	// KindInternal: the crypto primitive failed on well-formed input.
	KindInternal Kind = "Internal"
)

var (
	ErrDecryption     = errors.New("decryption failed")
	ErrInternalCrypto = errors.New("internal crypto fault")
)

type Error struct {
	Kind  Kind
	Op    string
	Tier  model.Tier
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("protector: %s (%s) %s", e.Op, e.Tier, e.sentinel())
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches ErrDecryption and ErrInternalCrypto by kind.
func (e *Error) Is(target error) bool {
	return e != nil && target == e.sentinel()
}

func (e *Error) sentinel() error {
	if e.Kind == KindDecryption {
		return ErrDecryption
	}
	return ErrInternalCrypto
}

func decryptionError(tier model.Tier, cause error) error {
	return &Error{Kind: KindDecryption, Op: "decrypt", Tier: tier, Cause: cause}
}

func internalError(op string, tier model.Tier, cause error) error {
	return &Error{Kind: KindInternal, Op: op, Tier: tier, Cause: cause}
}
