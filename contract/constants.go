package contract

import "github.com/gagliardetto/solana-go"

// -----------------------------------------------------------------------------
// Derived Address Seeds
// -----------------------------------------------------------------------------

const (
	SeedMintConfig     = "mint_config"
	SeedMintAuthority  = "mint_authority"
	SeedPresale        = "presale"
	SeedLockedTreasury = "locked_treasury"
	SeedDevTreasury    = "dev_treasury"
	SeedVesting        = "vesting"
	SeedController     = "autonomous_controller"
	SeedBurnTreasury   = "burn_treasury"
	SeedUpgradeLock    = "upgrade_timelock"
)

// UpgradeableLoaderID owns program buffers an upgrade may point at.
var UpgradeableLoaderID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

// -----------------------------------------------------------------------------
// Time
// -----------------------------------------------------------------------------

const (
	Hour  int64 = 3600
	Day   int64 = 24 * Hour
	Month int64 = 30 * Day
	Year  int64 = 365 * Day
)

const (
	// RefundWindowOpensAfter is how long after launch the locked half becomes refundable.
	RefundWindowOpensAfter = 3 * Month
	// RefundWindowLength is how long the locked refund window stays open.
	RefundWindowLength = 3 * Month
	// DevRefundWindowOpensAfter gates the development half behind a full year.
	DevRefundWindowOpensAfter = Year
	// DevRefundWindowLength is how long the dev refund window stays open.
	DevRefundWindowLength = 3 * Month
)

const (
	MinTimelockDelay = Day
	MaxTimelockDelay = 30 * Day
)

// -----------------------------------------------------------------------------
// Amount Scaling
// -----------------------------------------------------------------------------

// PriceDecimals is the implicit scale of every USD amount and price (6 decimals).
const PriceDecimals = 6

// -----------------------------------------------------------------------------
// Validation Limits
// -----------------------------------------------------------------------------

const (
	// MaxTransferFeeBps caps the token transfer fee at 1%.
	MaxTransferFeeBps = 100
	MaxNameLength     = 32
	MaxSymbolLength   = 10
	MaxURILength      = 200

	MaxAcceptedAssets = 10
	// InitialMaxContributions is the contribution capacity a fresh presale pays rent for.
	InitialMaxContributions = 1_000
	// MaxPresaleContributions is the hard ceiling ExpandPresaleCapacity can grow to.
	MaxPresaleContributions = 1_000_000

	MaxBeneficiaries = 64
	MaxBackupFeeds   = 4
)

// -----------------------------------------------------------------------------
// Account Space
// -----------------------------------------------------------------------------

const (
	discriminatorSize = 8

	MintConfigSpace   = discriminatorSize + 32 + 32 + (4 + MaxNameLength) + (4 + MaxSymbolLength) + (4 + MaxURILength) + 1 + 2 + 8 + 1 + 1
	presaleBaseSpace  = 1024
	contributionSpace = 32 + 32 + 8 + 8 + 8 + 8 + 4 + 8
	vestingBaseSpace  = 256
	beneficiarySpace  = 32 + 8 + 8 + 8
	ControllerSpace   = 1024
	BurnTreasurySpace = 256
	TimelockSpace     = 256
)

// PresaleSpace is the allocation a presale needs to hold maxContributions entries.
func PresaleSpace(maxContributions uint32) uint64 {
	return presaleBaseSpace + 4 + uint64(maxContributions)*contributionSpace
}

// VestingSpace is fixed since the beneficiary list is capped.
func VestingSpace() uint64 {
	return vestingBaseSpace + 4 + MaxBeneficiaries*beneficiarySpace
}

// -----------------------------------------------------------------------------
// Default/Fallback Controller Values
// -----------------------------------------------------------------------------

const (
	FallbackHighSupplyThresholdTokens = 5_000_000_000
	FallbackSupplyFloorTokens         = 1_000_000_000
	FallbackMintLowGrowthBps          = 500
	FallbackMintHighGrowthBps         = 1000
	FallbackExtremeGrowthBps          = 3000
	FallbackMintLowRateBps            = 500
	FallbackMintHighRateBps           = 1000
	FallbackExtremeMintRateBps        = 200
	FallbackBurnLowDeclineBps         = 500
	FallbackBurnHighDeclineBps        = 1000
	FallbackBurnLowRateBps            = 500
	FallbackBurnHighRateBps           = 1000
	FallbackMaxConfidenceBps          = 200
	FallbackStrictMaxAge              = Hour
	FallbackStandardMaxAge            = 3 * Hour
	FallbackMaxPriceChangeBps         = 5000
	FallbackMinActionInterval         = Hour

	// OracleHardMaxAge is the ceiling no configuration can lift.
	OracleHardMaxAge = 24 * Hour
	// OracleMaxClockSkew tolerates feeds publishing slightly ahead of the block clock.
	OracleMaxClockSkew int64 = 60
)
