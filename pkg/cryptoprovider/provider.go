// Package cryptoprovider defines the cipher-primitive boundary this module
// decrypts everything through (spec.md §6), plus a default implementation
// built on the standard library and golang.org/x/crypto.
package cryptoprovider

// CryptoProvider is the cipher-primitive collaborator every unwrap and
// sector-decryption operation goes through. Callers may supply their own
// implementation (an HSM, platform CNG, a test double) in place of Default.
type CryptoProvider interface {
	// AESECBDecrypt decrypts a single AES block (or consecutive blocks)
	// in ECB mode. Used for CBC-mode sector IV derivation (spec.md §4.F).
	AESECBDecrypt(key, ciphertext []byte) ([]byte, error)

	// AESCBCDecrypt decrypts data in CBC mode under the given key and IV.
	// len(data) must be a multiple of the AES block size.
	AESCBCDecrypt(key, iv, data []byte) ([]byte, error)

	// AESCCMDecryptAndVerify decrypts and authenticates an AES-CCM
	// ciphertext (nonce, associated data, and the ciphertext with its
	// authentication tag appended, spec.md §4.E), returning
	// the plaintext or an error if authentication fails.
	AESCCMDecryptAndVerify(key, nonce, associatedData, ciphertextAndTag []byte) ([]byte, error)

	// SHA256 returns the SHA-256 digest of data.
	SHA256(data []byte) [32]byte

	// AESXTSDecrypt decrypts a single sector under AES-XTS using the
	// given 32- or 64-byte key (data key || tweak key) and sector number
	// as the XTS tweak (spec.md §4.F).
	AESXTSDecrypt(key []byte, sectorNumber uint64, data []byte) ([]byte, error)
}
