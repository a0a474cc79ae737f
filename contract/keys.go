package contract

import (
	"github.com/gagliardetto/solana-go"
)

// Every entity lives at an address derived from the program id and fixed seeds.
// Callers pass addresses in, the program always recomputes and compares them.

func mintConfigSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedMintConfig), mint[:]}
}

func mintAuthoritySeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedMintAuthority), mint[:]}
}

func presaleSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedPresale), mint[:]}
}

func lockedTreasurySeeds(presale solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedLockedTreasury), presale[:]}
}

func devTreasurySeeds(presale solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedDevTreasury), presale[:]}
}

func vestingSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedVesting), mint[:]}
}

func controllerSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedController), mint[:]}
}

func burnTreasurySeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedBurnTreasury), mint[:]}
}

func timelockSeeds() [][]byte {
	return [][]byte{[]byte(SeedUpgradeLock)}
}

func FindMintConfigAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(mintConfigSeeds(mint), programID)
}

func FindMintAuthorityAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(mintAuthoritySeeds(mint), programID)
}

func FindPresaleAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(presaleSeeds(mint), programID)
}

func FindLockedTreasuryAddress(programID, presale solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(lockedTreasurySeeds(presale), programID)
}

func FindDevTreasuryAddress(programID, presale solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(devTreasurySeeds(presale), programID)
}

func FindVestingAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(vestingSeeds(mint), programID)
}

func FindControllerAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(controllerSeeds(mint), programID)
}

func FindBurnTreasuryAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(burnTreasurySeeds(mint), programID)
}

// FindProgramDataAddress is where the upgradeable loader keeps the program's
// deploy slot and upgrade authority.
func FindProgramDataAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{programID[:]}, UpgradeableLoaderID)
}

func FindTimelockAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(timelockSeeds(), programID)
}

// mustFind is for builders working on keys that are known to be valid.
func mustFind(addr solana.PublicKey, _ uint8, err error) solana.PublicKey {
	if err != nil {
		panic(err)
	}
	return addr
}

// verifyAddress recomputes seeds+bump under programID and compares with key.
func verifyAddress(programID, key solana.PublicKey, bump uint8, seeds [][]byte) error {
	full := make([][]byte, 0, len(seeds)+1)
	full = append(full, seeds...)
	full = append(full, []byte{bump})
	derived, err := solana.CreateProgramAddress(full, programID)
	if err != nil {
		return fail(ErrInvalidSeeds, "derive: %v", err)
	}
	if !derived.Equals(key) {
		return fail(ErrInvalidSeeds, "expected %s got %s", derived, key)
	}
	return nil
}

// findAddress searches the canonical bump and compares with key, used on creation.
func findAddress(programID, key solana.PublicKey, seeds [][]byte) (uint8, error) {
	derived, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return 0, fail(ErrInvalidSeeds, "derive: %v", err)
	}
	if !derived.Equals(key) {
		return 0, fail(ErrInvalidSeeds, "expected %s got %s", derived, key)
	}
	return bump, nil
}
