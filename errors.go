package bde

import "github.com/deploymenttheory/go-bde/pkg/types"

// BDEError is the single result-type error every exported operation
// returns on failure (SPEC_FULL.md §6): a kind for programmatic dispatch,
// the operation that failed, a message, and an optional wrapped cause.
// It is an alias of types.BDEError so the internal packages that construct
// one directly (via types.NewError/types.WrapError) need no change while
// callers importing only this package still see *bde.BDEError.
type BDEError = types.BDEError

// ErrorKind classifies a BDEError (spec.md §7).
type ErrorKind = types.ErrorKind

const (
	ErrKindIoError                     = types.ErrKindIoError
	ErrKindMetadataCorrupt             = types.ErrKindMetadataCorrupt
	ErrKindUnsupportedVersion          = types.ErrKindUnsupportedVersion
	ErrKindUnsupportedEncryptionMethod = types.ErrKindUnsupportedEncryptionMethod
	ErrKindInvalidCredential           = types.ErrKindInvalidCredential
	ErrKindUnlockFailed                = types.ErrKindUnlockFailed
	ErrKindNotUnlocked                 = types.ErrKindNotUnlocked
	ErrKindOutOfRange                  = types.ErrKindOutOfRange
	ErrKindAborted                     = types.ErrKindAborted
)

// Sentinel instances for errors.Is matching against error kind alone, e.g.
// errors.Is(err, bde.ErrMetadataCorrupt).
var (
	ErrIoError                     = types.ErrIoError
	ErrMetadataCorrupt             = types.ErrMetadataCorrupt
	ErrUnsupportedVersion          = types.ErrUnsupportedVersion
	ErrUnsupportedEncryptionMethod = types.ErrUnsupportedEncryptionMethod
	ErrInvalidCredential           = types.ErrInvalidCredential
	ErrUnlockFailed                = types.ErrUnlockFailed
	ErrNotUnlocked                 = types.ErrNotUnlocked
	ErrOutOfRange                  = types.ErrOutOfRange
	ErrAborted                     = types.ErrAborted
)
