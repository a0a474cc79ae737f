package contract

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
)

// entity is anything persisted as a program account. The 8 byte discriminator in front
// of the borsh body keeps one entity type from being passed where another is expected.
type entity interface {
	discriminator() [discriminatorSize]byte
}

func accountDiscriminator(name string) [discriminatorSize]byte {
	h := sha256.Sum256([]byte("account:" + name))
	var out [discriminatorSize]byte
	copy(out[:], h[:discriminatorSize])
	return out
}

var (
	discMintConfig   = accountDiscriminator("MintConfig")
	discPresale      = accountDiscriminator("PresaleState")
	discVesting      = accountDiscriminator("VestingState")
	discController   = accountDiscriminator("AutonomousController")
	discBurnTreasury = accountDiscriminator("BurnTreasury")
	discTimelock     = accountDiscriminator("UpgradeTimelock")
)

func (*MintConfig) discriminator() [discriminatorSize]byte           { return discMintConfig }
func (*PresaleState) discriminator() [discriminatorSize]byte         { return discPresale }
func (*VestingState) discriminator() [discriminatorSize]byte         { return discVesting }
func (*AutonomousController) discriminator() [discriminatorSize]byte { return discController }
func (*BurnTreasury) discriminator() [discriminatorSize]byte         { return discBurnTreasury }
func (*UpgradeTimelock) discriminator() [discriminatorSize]byte      { return discTimelock }

func encodeEntity(v entity) ([]byte, error) {
	buf := new(bytes.Buffer)
	d := v.discriminator()
	buf.Write(d[:])
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeEntity fails with UninitializedAccount for empty data and InvalidAccountOwner
// when the bytes belong to a different entity type.
func decodeEntity(data []byte, v entity) error {
	if len(data) == 0 {
		return ErrUninitializedAccount
	}
	d := v.discriminator()
	if len(data) < discriminatorSize || !bytes.Equal(data[:discriminatorSize], d[:]) {
		return fail(ErrInvalidAccountOwner, "discriminator mismatch")
	}
	if err := bin.NewBorshDecoder(data[discriminatorSize:]).Decode(v); err != nil {
		return fail(ErrInvalidAccountOwner, "decode: %v", err)
	}
	return nil
}
