package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/token2022"
)

// Builders derive every PDA and token account themselves so callers only deal in
// wallets and mints. The account order matches instructionDefs.

func newInstruction(programID solana.PublicKey, tag Tag, args interface{}, metas ...*solana.AccountMeta) *Instruction {
	if args == nil {
		args = &EmptyArgs{}
	}
	return &Instruction{
		programID:        programID,
		Tag:              tag,
		Args:             args,
		AccountMetaSlice: metas,
	}
}

func ata(wallet, mint solana.PublicKey) solana.PublicKey {
	return token2022.MustAssociatedTokenAddress(wallet, mint)
}

// presaleAddresses returns presale, locked treasury and dev treasury for mint.
func presaleAddresses(programID, mint solana.PublicKey) (presale, locked, dev solana.PublicKey) {
	presale = mustFind(FindPresaleAddress(programID, mint))
	locked = mustFind(FindLockedTreasuryAddress(programID, presale))
	dev = mustFind(FindDevTreasuryAddress(programID, presale))
	return presale, locked, dev
}

// -----------------------------------------------------------------------------
// Token
// -----------------------------------------------------------------------------

func NewInitializeTokenInstruction(programID, mint, authority solana.PublicKey, args InitializeTokenArgs) *Instruction {
	return newInstruction(programID, TagInitializeToken, &args,
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))).WRITE(),
		solana.Meta(mint).WRITE().SIGNER(),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

func NewSetTransferFeeInstruction(programID, mint, authority solana.PublicKey, bps uint16, maxFee uint64) *Instruction {
	return newInstruction(programID, TagSetTransferFee, &SetTransferFeeArgs{Bps: bps, MaxFee: maxFee},
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))).WRITE(),
		solana.Meta(mint).WRITE(),
		solana.Meta(authority).SIGNER(),
	)
}

func NewUpdateTokenMetadataInstruction(programID, mint, authority solana.PublicKey, args UpdateTokenMetadataArgs) *Instruction {
	return newInstruction(programID, TagUpdateTokenMetadata, &args,
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))).WRITE(),
		solana.Meta(authority).SIGNER(),
	)
}

// -----------------------------------------------------------------------------
// Presale
// -----------------------------------------------------------------------------

func NewInitializePresaleInstruction(programID, mint, authority solana.PublicKey, args InitializePresaleArgs) *Instruction {
	presale, locked, dev := presaleAddresses(programID, mint)
	return newInstruction(programID, TagInitializePresale, &args,
		solana.Meta(presale).WRITE(),
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))),
		solana.Meta(mint),
		solana.Meta(locked),
		solana.Meta(dev),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

func NewAddSupportedAssetInstruction(programID, mint, authority, asset solana.PublicKey) *Instruction {
	presale, _, _ := presaleAddresses(programID, mint)
	return newInstruction(programID, TagAddSupportedAsset, &AddSupportedAssetArgs{AssetMint: asset},
		solana.Meta(presale).WRITE(),
		solana.Meta(authority).WRITE().SIGNER(),
		solana.Meta(asset),
	)
}

func NewBuyTokensInstruction(programID, mint, buyer, asset solana.PublicKey, amount uint64) *Instruction {
	presale, locked, dev := presaleAddresses(programID, mint)
	return newInstruction(programID, TagBuyTokens, &BuyTokensArgs{Amount: amount},
		solana.Meta(presale).WRITE(),
		solana.Meta(buyer).SIGNER(),
		solana.Meta(ata(buyer, asset)).WRITE(),
		solana.Meta(asset),
		solana.Meta(ata(locked, asset)).WRITE(),
		solana.Meta(ata(dev, asset)).WRITE(),
	)
}

func presaleAuthorityInstruction(programID, mint, authority solana.PublicKey, tag Tag) *Instruction {
	presale, _, _ := presaleAddresses(programID, mint)
	return newInstruction(programID, tag, nil,
		solana.Meta(presale).WRITE(),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

func NewEndPresaleInstruction(programID, mint, authority solana.PublicKey) *Instruction {
	return presaleAuthorityInstruction(programID, mint, authority, TagEndPresale)
}

func NewLaunchTokenInstruction(programID, mint, authority solana.PublicKey) *Instruction {
	return presaleAuthorityInstruction(programID, mint, authority, TagLaunchToken)
}

func NewExpandPresaleCapacityInstruction(programID, mint, authority solana.PublicKey) *Instruction {
	return presaleAuthorityInstruction(programID, mint, authority, TagExpandPresaleCapacity)
}

func NewClaimPresaleTokensInstruction(programID, mint, buyer solana.PublicKey) *Instruction {
	presale, _, _ := presaleAddresses(programID, mint)
	return newInstruction(programID, TagClaimPresaleTokens, nil,
		solana.Meta(presale).WRITE(),
		solana.Meta(buyer).SIGNER(),
		solana.Meta(mint).WRITE(),
		solana.Meta(mustFind(FindMintAuthorityAddress(programID, mint))),
		solana.Meta(ata(buyer, mint)).WRITE(),
	)
}

// -----------------------------------------------------------------------------
// Treasury
// -----------------------------------------------------------------------------

func refundInstruction(programID, mint, buyer, asset solana.PublicKey, kind treasuryKind) *Instruction {
	presale, locked, dev := presaleAddresses(programID, mint)
	tag, wallet := TagClaimRefund, locked
	if kind == treasuryDev {
		tag, wallet = TagClaimDevFundRefund, dev
	}
	return newInstruction(programID, tag, nil,
		solana.Meta(presale).WRITE(),
		solana.Meta(buyer).SIGNER(),
		solana.Meta(asset),
		solana.Meta(wallet),
		solana.Meta(ata(wallet, asset)).WRITE(),
		solana.Meta(ata(buyer, asset)).WRITE(),
	)
}

func NewClaimRefundInstruction(programID, mint, buyer, asset solana.PublicKey) *Instruction {
	return refundInstruction(programID, mint, buyer, asset, treasuryLocked)
}

func NewClaimDevFundRefundInstruction(programID, mint, buyer, asset solana.PublicKey) *Instruction {
	return refundInstruction(programID, mint, buyer, asset, treasuryDev)
}

func withdrawInstruction(programID, mint, authority, asset, destination solana.PublicKey, kind treasuryKind) *Instruction {
	presale, locked, dev := presaleAddresses(programID, mint)
	tag, wallet := TagWithdrawLockedFunds, locked
	if kind == treasuryDev {
		tag, wallet = TagWithdrawDevFunds, dev
	}
	return newInstruction(programID, tag, nil,
		solana.Meta(presale).WRITE(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(asset),
		solana.Meta(wallet),
		solana.Meta(ata(wallet, asset)).WRITE(),
		solana.Meta(destination).WRITE(),
	)
}

// NewWithdrawLockedFundsInstruction sweeps to destination, a token account for asset.
func NewWithdrawLockedFundsInstruction(programID, mint, authority, asset, destination solana.PublicKey) *Instruction {
	return withdrawInstruction(programID, mint, authority, asset, destination, treasuryLocked)
}

func NewWithdrawDevFundsInstruction(programID, mint, authority, asset, destination solana.PublicKey) *Instruction {
	return withdrawInstruction(programID, mint, authority, asset, destination, treasuryDev)
}

// -----------------------------------------------------------------------------
// Vesting
// -----------------------------------------------------------------------------

func NewInitializeVestingInstruction(programID, mint, authority solana.PublicKey, args InitializeVestingArgs) *Instruction {
	return newInstruction(programID, TagInitializeVesting, &args,
		solana.Meta(mustFind(FindVestingAddress(programID, mint))).WRITE(),
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

func NewAddVestingBeneficiaryInstruction(programID, mint, authority, beneficiary solana.PublicKey, amount uint64) *Instruction {
	return newInstruction(programID, TagAddVestingBeneficiary, &AddVestingBeneficiaryArgs{Beneficiary: beneficiary, Amount: amount},
		solana.Meta(mustFind(FindVestingAddress(programID, mint))).WRITE(),
		solana.Meta(authority).SIGNER(),
	)
}

// NewReleaseVestedTokensInstruction needs no signer, anyone may crank a release.
func NewReleaseVestedTokensInstruction(programID, mint, beneficiary solana.PublicKey) *Instruction {
	return newInstruction(programID, TagReleaseVestedTokens, &ReleaseVestedTokensArgs{Beneficiary: beneficiary},
		solana.Meta(mustFind(FindVestingAddress(programID, mint))).WRITE(),
		solana.Meta(mint).WRITE(),
		solana.Meta(mustFind(FindMintAuthorityAddress(programID, mint))),
		solana.Meta(ata(beneficiary, mint)).WRITE(),
	)
}

// -----------------------------------------------------------------------------
// Supply controller
// -----------------------------------------------------------------------------

func NewInitializeAutonomousControllerInstruction(programID, mint, authority solana.PublicKey, params ControllerParams) *Instruction {
	return newInstruction(programID, TagInitializeAutonomousController, &InitializeControllerArgs{Params: params},
		solana.Meta(mustFind(FindControllerAddress(programID, mint))).WRITE(),
		solana.Meta(mustFind(FindMintConfigAddress(programID, mint))),
		solana.Meta(mint),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

// NewUpdateOraclePriceInstruction takes the primary feed first and up to MaxBackupFeeds backups.
func NewUpdateOraclePriceInstruction(programID, mint, primary solana.PublicKey, backups ...solana.PublicKey) *Instruction {
	metas := []*solana.AccountMeta{
		solana.Meta(mustFind(FindControllerAddress(programID, mint))).WRITE(),
		solana.Meta(mint),
		solana.Meta(primary),
	}
	for _, b := range backups {
		metas = append(metas, solana.Meta(b))
	}
	return newInstruction(programID, TagUpdateOraclePrice, nil, metas...)
}

func NewExecuteAutonomousMintInstruction(programID, mint, recipient solana.PublicKey) *Instruction {
	return newInstruction(programID, TagExecuteAutonomousMint, nil,
		solana.Meta(mustFind(FindControllerAddress(programID, mint))).WRITE(),
		solana.Meta(mint).WRITE(),
		solana.Meta(mustFind(FindMintAuthorityAddress(programID, mint))),
		solana.Meta(ata(recipient, mint)).WRITE(),
	)
}

func NewExecuteAutonomousBurnInstruction(programID, mint solana.PublicKey) *Instruction {
	burnTreasury := mustFind(FindBurnTreasuryAddress(programID, mint))
	return newInstruction(programID, TagExecuteAutonomousBurn, nil,
		solana.Meta(mustFind(FindControllerAddress(programID, mint))).WRITE(),
		solana.Meta(mint).WRITE(),
		solana.Meta(burnTreasury).WRITE(),
		solana.Meta(ata(burnTreasury, mint)).WRITE(),
	)
}

func NewInitializeBurnTreasuryInstruction(programID, mint, authority solana.PublicKey) *Instruction {
	return newInstruction(programID, TagInitializeBurnTreasury, nil,
		solana.Meta(mustFind(FindBurnTreasuryAddress(programID, mint))).WRITE(),
		solana.Meta(mustFind(FindControllerAddress(programID, mint))).WRITE(),
		solana.Meta(mint),
		solana.Meta(authority).WRITE().SIGNER(),
	)
}

func NewDepositToBurnTreasuryInstruction(programID, mint, depositor solana.PublicKey, amount uint64) *Instruction {
	burnTreasury := mustFind(FindBurnTreasuryAddress(programID, mint))
	return newInstruction(programID, TagDepositToBurnTreasury, &DepositToBurnTreasuryArgs{Amount: amount},
		solana.Meta(burnTreasury).WRITE(),
		solana.Meta(mint),
		solana.Meta(depositor).SIGNER(),
		solana.Meta(ata(depositor, mint)).WRITE(),
		solana.Meta(ata(burnTreasury, mint)).WRITE(),
	)
}

// -----------------------------------------------------------------------------
// Upgrade timelock
// -----------------------------------------------------------------------------

func NewInitializeUpgradeTimelockInstruction(programID, authority solana.PublicKey, delay int64) *Instruction {
	return newInstruction(programID, TagInitializeUpgradeTimelock, &InitializeUpgradeTimelockArgs{Delay: delay},
		solana.Meta(mustFind(FindTimelockAddress(programID))).WRITE(),
		solana.Meta(authority).WRITE().SIGNER(),
		solana.Meta(mustFind(FindProgramDataAddress(programID))),
	)
}

func timelockInstruction(programID, authority solana.PublicKey, tag Tag) *Instruction {
	return newInstruction(programID, tag, nil,
		solana.Meta(mustFind(FindTimelockAddress(programID))).WRITE(),
		solana.Meta(authority).SIGNER(),
	)
}

func NewProposeUpgradeInstruction(programID, authority solana.PublicKey) *Instruction {
	return timelockInstruction(programID, authority, TagProposeUpgrade)
}

func NewCancelUpgradeInstruction(programID, authority solana.PublicKey) *Instruction {
	return timelockInstruction(programID, authority, TagCancelUpgrade)
}

func NewPermanentlyDisableUpgradesInstruction(programID, authority solana.PublicKey) *Instruction {
	return timelockInstruction(programID, authority, TagPermanentlyDisableUpgrades)
}

func NewExecuteUpgradeInstruction(programID, authority, buffer solana.PublicKey) *Instruction {
	return newInstruction(programID, TagExecuteUpgrade, &ExecuteUpgradeArgs{Buffer: buffer},
		solana.Meta(mustFind(FindTimelockAddress(programID))).WRITE(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(buffer),
	)
}
