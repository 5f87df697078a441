package unwrap

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

const (
	recoveryPasswordGroupCount = 8
	recoveryPasswordGroupDigits = 6
	recoveryPasswordDigitCount  = recoveryPasswordGroupCount * recoveryPasswordGroupDigits
)

// NormalizeRecoveryPassword strips optional hyphen group separators from a
// 48-digit recovery password, returning the bare digit string (spec.md §6:
// "48 ASCII digits, optionally separated by - into eight 6-digit groups").
func NormalizeRecoveryPassword(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// ParseRecoveryPassword validates and decodes a 48-digit recovery password
// into its 16-byte key, per spec.md §4.E/§6: eight groups of six digits,
// each group's numeric value must be divisible by 11 and the quotient must
// fit in 16 bits; the quotients, little-endian, are the 16-byte key.
func ParseRecoveryPassword(digits string) ([]byte, error) {
	digits = NormalizeRecoveryPassword(digits)
	if len(digits) != recoveryPasswordDigitCount {
		return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.ParseRecoveryPassword",
			fmt.Sprintf("expected %d digits, got %d", recoveryPasswordDigitCount, len(digits)))
	}

	key := make([]byte, 16)
	for i := 0; i < recoveryPasswordGroupCount; i++ {
		group := digits[i*recoveryPasswordGroupDigits : (i+1)*recoveryPasswordGroupDigits]
		for _, c := range group {
			if c < '0' || c > '9' {
				return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.ParseRecoveryPassword",
					fmt.Sprintf("group %d contains a non-digit character", i))
			}
		}
		value, err := strconv.ParseUint(group, 10, 32)
		if err != nil {
			return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.ParseRecoveryPassword",
				fmt.Sprintf("group %d is not a valid number: %v", i, err))
		}
		if value%11 != 0 {
			return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.ParseRecoveryPassword",
				fmt.Sprintf("group %d (%d) is not divisible by 11", i, value))
		}
		quotient := value / 11
		if quotient > 0xffff {
			return nil, types.NewError(types.ErrKindInvalidCredential, "unwrap.ParseRecoveryPassword",
				fmt.Sprintf("group %d quotient %d does not fit in 16 bits", i, quotient))
		}
		binary.LittleEndian.PutUint16(key[i*2:i*2+2], uint16(quotient))
	}
	return key, nil
}

// FormatRecoveryPassword is the inverse of ParseRecoveryPassword, rendering
// a 16-byte key as a hyphen-separated 48-digit recovery password. Used by
// the round-trip property in spec.md §8.
func FormatRecoveryPassword(key []byte) (string, error) {
	if len(key) != 16 {
		return "", fmt.Errorf("format recovery password: key must be 16 bytes, got %d", len(key))
	}
	groups := make([]string, recoveryPasswordGroupCount)
	for i := 0; i < recoveryPasswordGroupCount; i++ {
		quotient := binary.LittleEndian.Uint16(key[i*2 : i*2+2])
		value := uint32(quotient) * 11
		groups[i] = fmt.Sprintf("%06d", value)
	}
	return strings.Join(groups, "-"), nil
}
