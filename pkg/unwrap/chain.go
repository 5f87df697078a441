package unwrap

import (
	"fmt"
	"sync/atomic"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/metadata"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// Result is the outcome of successfully walking the protector tree: the
// unwrapped VMK bytes, which VMK entry supplied them, and the FVEK key
// material unwrapped using that VMK.
type Result struct {
	VMK            *metadata.VMK
	VMKBytes       []byte
	FVEK           *metadata.FVEKKeyMaterial
}

// Unwrap walks vmks looking for one matching credential's kind, unwraps it,
// then uses the recovered VMK bytes to unwrap fvek (spec.md §4.E tree
// walk). declaredMethod is the encryption method from the metadata block
// header, used to cross-check the FVEK's length-inferred cipher.
func Unwrap(provider cryptoprovider.CryptoProvider, vmks []*metadata.VMK, fvek *metadata.FVEK, declaredMethod types.EncryptionMethod, cred Credential, abort *atomic.Bool, logger types.Logger) (*Result, error) {
	if logger == nil {
		logger = types.NoopLogger{}
	}
	if cred.Kind == CredentialRawKeys {
		return rawKeyResult(cred, declaredMethod)
	}

	var lastErr error
	for _, vmk := range vmks {
		if vmk.ProtectionType.IsTPMBacked() {
			return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.Unwrap", fmt.Sprintf("vmk %s: protection type %s is TPM-backed; this module never attempts to satisfy it", vmk.Identifier, vmk.ProtectionType))
		}
		if !vmk.ProtectionType.IsKnown() {
			logger.Warnf("unwrap.Unwrap: vmk %s: unrecognized protection type %#x, skipping", vmk.Identifier, uint16(vmk.ProtectionType))
			continue
		}
		if !cred.Kind.MatchesProtectionType(vmk.ProtectionType) {
			continue
		}
		vmkBytes, err := unwrapVMK(provider, vmk, cred, abort)
		if err != nil {
			lastErr = err
			continue
		}
		fvekMaterial, err := unwrapFVEK(provider, fvek, vmkBytes, declaredMethod)
		if err != nil {
			return nil, fmt.Errorf("unwrap: unwrapped vmk but fvek unwrap failed: %w", err)
		}
		return &Result{VMK: vmk, VMKBytes: vmkBytes, FVEK: fvekMaterial}, nil
	}

	if lastErr != nil {
		return nil, types.WrapError(types.ErrKindUnlockFailed, "unwrap.Unwrap", "no matching protector could be unwrapped", lastErr)
	}
	return nil, types.NewError(types.ErrKindUnlockFailed, "unwrap.Unwrap", "no VMK entry matches the supplied credential")
}

func rawKeyResult(cred Credential, declaredMethod types.EncryptionMethod) (*Result, error) {
	if len(cred.RawFVEK) == 0 {
		return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.Unwrap", "raw keys credential carries no FVEK bytes")
	}
	return &Result{
		FVEK: &metadata.FVEKKeyMaterial{
			Key:            cred.RawFVEK,
			TweakKey:       cred.RawTweakKey,
			InferredMethod: declaredMethod,
		},
	}, nil
}

func unwrapVMK(provider cryptoprovider.CryptoProvider, vmk *metadata.VMK, cred Credential, abort *atomic.Bool) ([]byte, error) {
	if vmk.WrappedKey == nil {
		return nil, fmt.Errorf("vmk %s: no wrapped key material present", vmk.Identifier)
	}

	var unwrapKey [32]byte
	switch cred.Kind {
	case CredentialClearKey:
		// Clear-key protectors wrap the VMK under an all-zero key: no
		// secret input from the caller is needed (spec.md §4.E).

	case CredentialRecoveryPassword:
		if vmk.StretchSalt == nil {
			return nil, fmt.Errorf("vmk %s: recovery_password protector missing stretch salt", vmk.Identifier)
		}
		key, err := ParseRecoveryPassword(cred.RecoveryPasswordDigits)
		if err != nil {
			return nil, fmt.Errorf("vmk %s: %w", vmk.Identifier, err)
		}
		k0 := InitialDigestFromRecoveryKey(provider, key)
		unwrapKey, err = Stretch(provider, k0, vmk.StretchSalt, abort)
		if err != nil {
			return nil, err
		}

	case CredentialPassword:
		if vmk.StretchSalt == nil {
			return nil, fmt.Errorf("vmk %s: password protector missing stretch salt", vmk.Identifier)
		}
		k0 := InitialDigestFromPassword(provider, cred.PasswordUTF8)
		var err error
		unwrapKey, err = Stretch(provider, k0, vmk.StretchSalt, abort)
		if err != nil {
			return nil, err
		}

	case CredentialStartupKey:
		if len(cred.StartupKeyBytes) != 32 {
			return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.unwrapVMK", "startup key must be 32 bytes")
		}
		copy(unwrapKey[:], cred.StartupKeyBytes)

	default:
		return nil, fmt.Errorf("vmk %s: unsupported credential kind for unwrap", vmk.Identifier)
	}

	plaintext, err := provider.AESCCMDecryptAndVerify(unwrapKey[:], vmk.WrappedKey.Nonce[:], nil, vmk.WrappedKey.CiphertextAndTag())
	if err != nil {
		return nil, types.WrapError(types.ErrKindUnlockFailed, "unwrap.unwrapVMK", fmt.Sprintf("vmk %s: wrong credential", vmk.Identifier), err)
	}
	return metadata.UnwrappedVMK(plaintext)
}

func unwrapFVEK(provider cryptoprovider.CryptoProvider, fvek *metadata.FVEK, vmkBytes []byte, declaredMethod types.EncryptionMethod) (*metadata.FVEKKeyMaterial, error) {
	if fvek == nil || fvek.WrappedKey == nil {
		return nil, fmt.Errorf("no fvek entry present")
	}
	plaintext, err := provider.AESCCMDecryptAndVerify(vmkBytes, fvek.WrappedKey.Nonce[:], nil, fvek.WrappedKey.CiphertextAndTag())
	if err != nil {
		return nil, types.WrapError(types.ErrKindUnlockFailed, "unwrap.unwrapFVEK", "fvek unwrap authentication failed", err)
	}
	return metadata.UnwrappedFVEK(plaintext, declaredMethod)
}
