package bde

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-bde/pkg/metadata"
	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/deploymenttheory/go-bde/pkg/unwrap"
	"github.com/deploymenttheory/go-bde/pkg/volume"
)

// SetRecoveryPassword stores a 48-digit recovery password credential,
// validated lazily at Unlock time (spec.md §4.H/§6).
func (v *Volume) SetRecoveryPassword(digits string) {
	v.credential = &unwrap.Credential{Kind: unwrap.CredentialRecoveryPassword, RecoveryPasswordDigits: digits}
}

// SetPassword stores a UTF-8 user password credential.
func (v *Volume) SetPassword(password string) {
	v.credential = &unwrap.Credential{Kind: unwrap.CredentialPassword, PasswordUTF8: password}
}

// SetStartupKeyPath reads and parses a .BEK startup-key file, storing its
// external-key GUID and raw key bytes as the credential (spec.md §6).
func (v *Volume) SetStartupKeyPath(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WrapError(types.ErrKindIoError, "bde.SetStartupKeyPath", "read startup key file", err)
	}
	guid, key, err := parseStartupKeyFile(data)
	if err != nil {
		return types.WrapError(types.ErrKindInvalidCredential, "bde.SetStartupKeyPath", "parse startup key file", err)
	}
	v.credential = &unwrap.Credential{
		Kind:                   unwrap.CredentialStartupKey,
		StartupKeyExternalGUID: guid,
		StartupKeyBytes:        key,
	}
	return nil
}

// SetKeys bypasses the unwrap chain entirely: fvek/tweak are raw key
// bytes for advanced callers who already possess the sector cipher key
// (spec.md §4.E credential kind "raw FVEK").
func (v *Volume) SetKeys(fvek, tweak []byte) {
	v.credential = &unwrap.Credential{Kind: unwrap.CredentialRawKeys, RawFVEK: fvek, RawTweakKey: tweak}
}

// SetClearKey marks the volume as clear-key protected (no secret input
// required, spec.md §4.E scenario 3).
func (v *Volume) SetClearKey() {
	v.credential = &unwrap.Credential{Kind: unwrap.CredentialClearKey}
}

// Abort requests cancellation of an in-progress Unlock call (spec.md §5,
// §8 scenario 6). It is safe to call from another goroutine.
func (v *Volume) Abort() {
	v.abort.Store(true)
}

// IsLocked reports whether the Volume has an unwrapped FVEK available.
func (v *Volume) IsLocked() bool {
	return v.state != types.StateUnlocked
}

// Unlock runs the key-protector unwrap chain against the stored
// credential and, on success, assembles the region map and virtual volume
// (spec.md §4.H). It is the only state transition that can take
// non-trivial time (the 2^20-round stretch KDF) and the only one that
// honors Abort.
func (v *Volume) Unlock() error {
	if v.state == types.StateUnlocked {
		return nil
	}
	if v.credential == nil {
		return types.NewError(types.ErrKindInvalidCredential, "bde.Unlock", "no credential supplied")
	}

	result, err := unwrap.Unwrap(v.cfg.provider, v.vmks, v.fvek, v.selectedBlock.BlockHeader.EncryptionMethod, *v.credential, &v.abort, v.cfg.logger)
	if err != nil {
		return err
	}

	regionMap, err := v.buildRegionMap()
	if err != nil {
		return fmt.Errorf("bde.Unlock: %w", err)
	}

	vv, err := volume.NewVirtualVolume(v.src, v.cfg.provider, regionMap, sectorKeyFromUnwrap(result), v.volumeSizeBytes(), v.cfg.cacheSize, v.cfg.logger)
	if err != nil {
		return fmt.Errorf("bde.Unlock: %w", err)
	}
	v.virtual = vv
	v.state = types.StateUnlocked
	return nil
}

func (v *Volume) buildRegionMap() (*types.RegionMap, error) {
	shadow := volume.NTFSShadow{}
	if v.bitlockerBootSector != nil {
		headerSectors := uint64(v.selectedBlock.BlockHeader.NumberOfVolumeHeaderSectors)
		shadow = volume.NTFSShadow{
			IsVista:            true,
			RelocatedOffset:    0,
			RelocatedLength:    headerSectors * uint64(v.bitlockerBootSector.BytesPerSector),
			BackupSourceOffset: v.selectedBlock.BlockHeader.FirstBackupNTFSSectorOffset,
		}
	}

	metadataRegions := v.metadataRegions([]*metadata.Block{v.selectedBlock})
	return volume.BuildRegionMap(v.volumeSizeBytes(), metadataRegions, shadow)
}

// parseStartupKeyFile decodes a .BEK file's single external_key entry:
// identifier GUID followed by a nested key entry (spec.md §6).
func parseStartupKeyFile(data []byte) (types.GUID, []byte, error) {
	entries, err := metadata.ReadEntries(data)
	if err != nil {
		return types.GUID{}, nil, fmt.Errorf("startup key file: %w", err)
	}
	for _, e := range entries {
		if e.ValueType != types.ValueTypeExternalKey {
			continue
		}
		if len(e.Payload) < 16 {
			return types.GUID{}, nil, fmt.Errorf("startup key file: external_key payload too short")
		}
		var guid types.GUID
		copy(guid[:], e.Payload[:16])
		nested, err := metadata.ReadEntries(e.Payload[16:])
		if err != nil {
			return types.GUID{}, nil, fmt.Errorf("startup key file: nested entries: %w", err)
		}
		for _, n := range nested {
			if n.ValueType == types.ValueTypeKey {
				return guid, append([]byte{}, n.Payload...), nil
			}
		}
		return types.GUID{}, nil, fmt.Errorf("startup key file: no key sub-entry found")
	}
	return types.GUID{}, nil, fmt.Errorf("startup key file: no external_key entry found")
}
