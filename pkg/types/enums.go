package types

// EncryptionMethod identifies the cipher mode applied to sector data, as
// recorded in the FVE metadata block header (spec.md §3).
type EncryptionMethod uint32

const (
	EncryptionMethodNone             EncryptionMethod = 0x0000
	EncryptionMethodAES128CBCDiffuser EncryptionMethod = 0x8000
	EncryptionMethodAES256CBCDiffuser EncryptionMethod = 0x8001
	EncryptionMethodAES128CBC        EncryptionMethod = 0x8002
	EncryptionMethodAES256CBC        EncryptionMethod = 0x8003
	EncryptionMethodAES128XTS        EncryptionMethod = 0x8004
	EncryptionMethodAES256XTS        EncryptionMethod = 0x8005
)

func (m EncryptionMethod) String() string {
	switch m {
	case EncryptionMethodNone:
		return "none"
	case EncryptionMethodAES128CBCDiffuser:
		return "aes_128_cbc_diffuser"
	case EncryptionMethodAES256CBCDiffuser:
		return "aes_256_cbc_diffuser"
	case EncryptionMethodAES128CBC:
		return "aes_128_cbc"
	case EncryptionMethodAES256CBC:
		return "aes_256_cbc"
	case EncryptionMethodAES128XTS:
		return "aes_128_xts"
	case EncryptionMethodAES256XTS:
		return "aes_256_xts"
	default:
		return "unknown"
	}
}

// KeyLenBytes returns the AES key length this method requires, or 0 for
// EncryptionMethodNone/unrecognized values.
func (m EncryptionMethod) KeyLenBytes() int {
	switch m {
	case EncryptionMethodAES128CBCDiffuser, EncryptionMethodAES128CBC:
		return 16
	case EncryptionMethodAES256CBCDiffuser, EncryptionMethodAES256CBC:
		return 32
	case EncryptionMethodAES128XTS:
		return 32 // two 16-byte keys (data key + tweak key)
	case EncryptionMethodAES256XTS:
		return 64 // two 32-byte keys
	default:
		return 0
	}
}

// HasDiffuser reports whether this method layers the Elephant diffuser on
// top of AES-CBC.
func (m EncryptionMethod) HasDiffuser() bool {
	return m == EncryptionMethodAES128CBCDiffuser || m == EncryptionMethodAES256CBCDiffuser
}

// IsXTS reports whether this method is one of the AES-XTS variants.
func (m EncryptionMethod) IsXTS() bool {
	return m == EncryptionMethodAES128XTS || m == EncryptionMethodAES256XTS
}

// ProtectionType identifies how a VMK entry's key material is protected
// (spec.md §3/§4.E), read from the VMK entry's nested protection-type value.
type ProtectionType uint16

const (
	ProtectionTypeUnknown            ProtectionType = 0x0000
	ProtectionTypeClearKey            ProtectionType = 0x0100
	ProtectionTypeTPM                 ProtectionType = 0x0200
	ProtectionTypeStartupKey          ProtectionType = 0x0300
	ProtectionTypeTPMAndPIN           ProtectionType = 0x0400
	ProtectionTypeRecoveryPassword    ProtectionType = 0x0800
	ProtectionTypePassword            ProtectionType = 0x2000
	ProtectionTypeTPMAndStartupKey    ProtectionType = 0x0500
	ProtectionTypePublicKey           ProtectionType = 0x0600
	ProtectionTypeTPMAndPINAndStartupKey ProtectionType = 0x0700
)

func (p ProtectionType) String() string {
	switch p {
	case ProtectionTypeClearKey:
		return "clear_key"
	case ProtectionTypeTPM:
		return "tpm"
	case ProtectionTypeStartupKey:
		return "startup_key"
	case ProtectionTypeTPMAndPIN:
		return "tpm_and_pin"
	case ProtectionTypeRecoveryPassword:
		return "recovery_password"
	case ProtectionTypePassword:
		return "password"
	case ProtectionTypeTPMAndStartupKey:
		return "tpm_and_startup_key"
	case ProtectionTypePublicKey:
		return "public_key"
	case ProtectionTypeTPMAndPINAndStartupKey:
		return "tpm_and_pin_and_startup_key"
	default:
		return "unknown"
	}
}

// IsKnown reports whether p is one of the protection-type tags this module
// recognizes, as opposed to a forward-compatible value it has never seen.
func (p ProtectionType) IsKnown() bool {
	switch p {
	case ProtectionTypeClearKey, ProtectionTypeTPM, ProtectionTypeStartupKey,
		ProtectionTypeTPMAndPIN, ProtectionTypeRecoveryPassword, ProtectionTypePassword,
		ProtectionTypeTPMAndStartupKey, ProtectionTypePublicKey, ProtectionTypeTPMAndPINAndStartupKey:
		return true
	default:
		return false
	}
}

// IsTPMBacked reports whether this protection type requires the TPM, which
// this module never attempts to satisfy (spec.md §1 Non-goals).
func (p ProtectionType) IsTPMBacked() bool {
	switch p {
	case ProtectionTypeTPM, ProtectionTypeTPMAndPIN, ProtectionTypeTPMAndStartupKey, ProtectionTypeTPMAndPINAndStartupKey:
		return true
	default:
		return false
	}
}

// EntryType identifies the kind of a top-level FVE metadata dataset entry
// (spec.md §3/§4.D).
type EntryType uint16

const (
	EntryTypeVMK           EntryType = 0x0002
	EntryTypeFVEK          EntryType = 0x0003
	EntryTypeStartupKey    EntryType = 0x0006
	EntryTypeDescription   EntryType = 0x0007
	EntryTypeVolumeHeader  EntryType = 0x000f
	EntryTypeUnknown000b   EntryType = 0x000b
)

// IsKnown reports whether t is one of the top-level entry-type tags this
// module recognizes. The 0x000b entry is not among them: like any other
// unrecognized tag its raw payload is preserved and it is reported with a
// diagnostic (see DESIGN.md).
func (t EntryType) IsKnown() bool {
	switch t {
	case EntryTypeVMK, EntryTypeFVEK, EntryTypeStartupKey, EntryTypeDescription,
		EntryTypeVolumeHeader:
		return true
	default:
		return false
	}
}

// ValueType identifies the encoding of an entry's value payload (spec.md §3).
type ValueType uint16

const (
	ValueTypeErased          ValueType = 0x0000
	ValueTypeKey             ValueType = 0x0001
	ValueTypeUnicodeString   ValueType = 0x0002
	ValueTypeStretchKey      ValueType = 0x0003
	ValueTypeUse             ValueType = 0x0004
	ValueTypeAESCCMEncryptedKey ValueType = 0x0005
	ValueTypeTPMEncryptedKey ValueType = 0x0006
	ValueTypeValidation      ValueType = 0x0007
	ValueTypeVolumeMasterKey ValueType = 0x0008
	ValueTypeExternalKey     ValueType = 0x0009
	ValueTypeUpdate          ValueType = 0x000a
	ValueTypeOpaque000b      ValueType = 0x000b
	ValueTypeOffsetAndSize   ValueType = 0x000f
)

// UnlockState is the Volume lifecycle state machine (spec.md §5):
// Closed -> Opened (metadata parsed, still locked) -> Unlocked -> Closed.
type UnlockState int

const (
	StateClosed UnlockState = iota
	StateOpened
	StateUnlocked
)

func (s UnlockState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpened:
		return "opened"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}
