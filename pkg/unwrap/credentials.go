// Package unwrap implements the key-protector unwrap chain (spec.md §4.E):
// turning a caller-supplied credential into the intermediate key that
// unwraps a matching VMK entry, then using the VMK to unwrap the FVEK.
package unwrap

import "github.com/deploymenttheory/go-bde/pkg/types"

// CredentialKind identifies which protection type a Credential can satisfy.
type CredentialKind int

const (
	CredentialRecoveryPassword CredentialKind = iota
	CredentialPassword
	CredentialStartupKey
	CredentialRawKeys
	CredentialClearKey
)

// Credential is a caller-supplied unlock input (spec.md §4.E/§6). Exactly
// one of the typed fields is populated, selected by Kind.
type Credential struct {
	Kind CredentialKind

	// RecoveryPasswordDigits holds the 48-digit recovery password as
	// supplied; hyphen group separators are optional and are stripped by
	// ParseRecoveryPassword.
	RecoveryPasswordDigits string

	// PasswordUTF8 is the user password as supplied (spec.md §4.E encodes
	// it UTF-16LE for the stretch-key KDF internally).
	PasswordUTF8 string

	// StartupKeyExternalGUID and StartupKeyBytes come from a parsed .BEK
	// file's external_key entry (GUID) and nested key entry (raw bytes).
	StartupKeyExternalGUID types.GUID
	StartupKeyBytes        []byte

	// RawFVEK/RawTweakKey bypass the unwrap chain entirely for advanced
	// callers who already possess the sector cipher key.
	RawFVEK     []byte
	RawTweakKey []byte
}

// MatchesProtectionType reports whether this credential kind is the one
// spec.md §4.E's tree walk matches against a VMK's protection-type tag.
func (k CredentialKind) MatchesProtectionType(pt types.ProtectionType) bool {
	switch k {
	case CredentialRecoveryPassword:
		return pt == types.ProtectionTypeRecoveryPassword
	case CredentialPassword:
		return pt == types.ProtectionTypePassword
	case CredentialStartupKey:
		return pt == types.ProtectionTypeStartupKey
	case CredentialClearKey:
		return pt == types.ProtectionTypeClearKey
	default:
		return false
	}
}
