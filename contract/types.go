package contract

import "github.com/gagliardetto/solana-go"

// MintConfig owns the token's parameters. The mint itself lives in the token program,
// this record only tracks who may change them.
type MintConfig struct {
	Authority         solana.PublicKey
	Mint              solana.PublicKey
	Name              string
	Symbol            string
	URI               string
	Decimals          uint8
	TransferFeeBps    uint16
	MaxFee            uint64
	Bump              uint8
	MintAuthorityBump uint8
}

// Contribution is one buyer's position in one payment asset.
// LockedAmount and DevAmount are the exact halves that went into each treasury.
type Contribution struct {
	Buyer            solana.PublicKey
	Asset            solana.PublicKey
	Amount           uint64
	TokenAmount      uint64
	LockedAmount     uint64
	DevAmount        uint64
	Refunded         bool
	ClaimedRefund    bool
	ClaimedDevRefund bool
	TokensClaimed    bool
	Timestamp        int64
}

// ContributionStatus is the derived lifecycle of a contribution at a point in time.
type ContributionStatus uint8

const (
	ContributionPending ContributionStatus = iota
	ContributionRefundableWindow
	ContributionRefunded
	ContributionDevRefundClaimed
	ContributionTokensClaimed
	ContributionExpired
)

// String serializes the status into the short names used in logs and views.
func (s ContributionStatus) String() string {
	switch s {
	case ContributionPending:
		return "pending"
	case ContributionRefundableWindow:
		return "refundable"
	case ContributionRefunded:
		return "refunded"
	case ContributionDevRefundClaimed:
		return "dev_refunded"
	case ContributionTokensClaimed:
		return "tokens_claimed"
	case ContributionExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type PresaleState struct {
	Authority          solana.PublicKey
	Mint               solana.PublicKey
	Bump               uint8
	LockedTreasury     solana.PublicKey
	LockedTreasuryBump uint8
	DevTreasury        solana.PublicKey
	DevTreasuryBump    uint8

	StartTime     int64
	EndTime       int64
	PricePerToken uint64
	SoftCap       uint64
	HardCap       uint64
	MinPurchase   uint64
	MaxPurchase   uint64

	TotalRaised      uint64
	TotalLocked      uint64
	TotalDev         uint64
	TotalTokensSold  uint64
	TotalRefunded    uint64
	TotalDevRefunded uint64
	LockedWithdrawn  uint64
	DevWithdrawn     uint64
	TokensClaimed    uint64

	IsActive           bool
	HasEnded           bool
	SoftCapReached     bool
	HardCapReached     bool
	DevFundsRefundable bool
	Launched           bool

	LaunchTime        int64
	RefundStart       int64
	RefundDeadline    int64
	DevRefundStart    int64
	DevRefundDeadline int64

	MaxContributions uint32
	AcceptedAssets   []solana.PublicKey
	Contributions    []Contribution
}

type VestingBeneficiary struct {
	ID              solana.PublicKey
	TotalAmount     uint64
	Released        uint64
	LastReleaseTime int64
}

type VestingState struct {
	Authority       solana.PublicKey
	Mint            solana.PublicKey
	Bump            uint8
	TotalTokens     uint64
	TotalAllocated  uint64
	TotalReleased   uint64
	StartTime       int64
	ReleaseInterval int64
	NumReleases     uint32
	Beneficiaries   []VestingBeneficiary
}

// ControllerParams are the tunables of the supply controller. Zero values are
// replaced by the Fallback* constants on initialize.
type ControllerParams struct {
	InitialPrice        uint64 // 6 decimals, 0 = first accepted reading becomes the baseline
	HighSupplyThreshold uint64 // base units
	SupplyFloor         uint64 // base units

	MintLowGrowthBps   uint64
	MintHighGrowthBps  uint64
	ExtremeGrowthBps   uint64
	MintLowRateBps     uint64
	MintHighRateBps    uint64
	ExtremeMintRateBps uint64

	BurnLowDeclineBps  uint64
	BurnHighDeclineBps uint64
	BurnLowRateBps     uint64
	BurnHighRateBps    uint64

	MaxConfidenceBps  uint64
	StrictMaxAge      int64
	StandardMaxAge    int64
	MaxPriceChangeBps uint64
	MinActionInterval int64

	OracleProgram solana.PublicKey // owner every feed account must have
	MintRecipient solana.PublicKey // wallet autonomous mints are paid to
}

// SupplyAction is what the latest accepted observation asks the controller to do.
type SupplyAction uint8

const (
	SupplyActionNone SupplyAction = iota
	SupplyActionMint
	SupplyActionBurn
)

func (a SupplyAction) String() string {
	switch a {
	case SupplyActionMint:
		return "mint"
	case SupplyActionBurn:
		return "burn"
	default:
		return "none"
	}
}

type AutonomousController struct {
	Authority solana.PublicKey
	Mint      solana.PublicKey
	Bump      uint8
	Params    ControllerParams

	CurrentSupply   uint64
	CurrentPrice    uint64
	LastGrowthBps   int64
	LastPriceUpdate int64
	LastMintTime    int64
	LastBurnTime    int64

	// one pending action per accepted observation, mint and burn can never both be armed
	Pending          SupplyAction
	PendingGrowthBps int64
	ObservationTime  int64
	ObservationCount uint64

	TotalMinted  uint64
	TotalBurned  uint64
	BurnTreasury solana.PublicKey
}

type BurnTreasury struct {
	Controller     solana.PublicKey
	Mint           solana.PublicKey
	TokenAccount   solana.PublicKey
	Bump           uint8
	TotalDeposited uint64
	TotalBurned    uint64
}

type UpgradeTimelock struct {
	Authority         solana.PublicKey
	Bump              uint8
	Delay             int64
	ProposedTime      int64 // 0 = nothing pending
	Pending           bool
	PermanentlyLocked bool
	Version           uint32
	CurrentBuffer     solana.PublicKey
	LastUpgradeTime   int64
}

// TimelockStatus is the derived state of the upgrade timelock.
type TimelockStatus uint8

const (
	TimelockNoProposal TimelockStatus = iota
	TimelockProposed
	TimelockExecutable
	TimelockPermanentlyLocked
)

func (s TimelockStatus) String() string {
	switch s {
	case TimelockProposed:
		return "proposed"
	case TimelockExecutable:
		return "executable"
	case TimelockPermanentlyLocked:
		return "permanently_locked"
	default:
		return "no_proposal"
	}
}
