package sector

import (
	"testing"

	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestKeyValidateCBC(t *testing.T) {
	k := Key{Method: types.EncryptionMethodAES128CBC, Cipher: make([]byte, 16)}
	assert.NoError(t, k.validate())

	k.Cipher = make([]byte, 15)
	assert.Error(t, k.validate())
}

func TestKeyValidateDiffuserRequiresMatchingTweakLength(t *testing.T) {
	k := Key{Method: types.EncryptionMethodAES256CBCDiffuser, Cipher: make([]byte, 32), TweakKey: make([]byte, 32)}
	assert.NoError(t, k.validate())

	k.TweakKey = make([]byte, 16)
	assert.Error(t, k.validate())
}

func TestKeyValidateXTS(t *testing.T) {
	k := Key{Method: types.EncryptionMethodAES128XTS, Cipher: make([]byte, 32)}
	assert.NoError(t, k.validate())

	k.Cipher = make([]byte, 16)
	assert.Error(t, k.validate())
}

func TestKeyValidateRejectsUnsupportedMethod(t *testing.T) {
	k := Key{Method: types.EncryptionMethodNone, Cipher: make([]byte, 16)}
	assert.Error(t, k.validate())
}

func TestHasZeroTweakKey(t *testing.T) {
	k := Key{Method: types.EncryptionMethodAES128CBCDiffuser, Cipher: make([]byte, 16), TweakKey: make([]byte, 16)}
	assert.True(t, k.HasZeroTweakKey())

	k.TweakKey[3] = 0x01
	assert.False(t, k.HasZeroTweakKey())

	nonDiffuser := Key{Method: types.EncryptionMethodAES128CBC, Cipher: make([]byte, 16)}
	assert.False(t, nonDiffuser.HasZeroTweakKey())
}
