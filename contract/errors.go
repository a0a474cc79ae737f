package contract

import (
	"github.com/pkg/errors"

	"launchpad/pkg/safemath"
	"launchpad/pkg/token2022"
	"launchpad/sdk"
)

// ProgramError is the closed set of failures an instruction can end with.
// The numeric value is stable; new codes are only ever appended.
type ProgramError uint32

const (
	ErrInvalidInstruction ProgramError = iota
	ErrNotRentExempt
	ErrUnauthorized
	ErrInvalidAccountOwner
	ErrInvalidMint
	ErrCalculation
	ErrInvalidOracleData
	ErrStaleOracleData
	ErrPriceManipulation
	ErrUnauthorizedBurnSource
	ErrInvalidFeeAmount
	ErrNoContribution
	ErrRefundAlreadyClaimed
	ErrRefundPeriodActive
	ErrRefundPeriodEnded
	ErrDevFundsNotRefundable
	ErrPresaleNotStarted
	ErrPresaleEnded
	ErrBeneficiaryNotFound
	ErrNoTokensToRelease
	ErrInvalidMintAuthority
	ErrInvalidBurnTreasury
	ErrTooEarlyForExecution
	ErrAlreadyInitialized
	ErrUninitializedAccount
	ErrInvalidSeeds
	ErrInvalidParameters
	ErrInvalidPurchaseAmount
	ErrHardCapExceeded
	ErrPresaleFull
	ErrCapacityExceeded
	ErrTooManyAssets
	ErrAssetAlreadySupported
	ErrPresaleActive
	ErrNotLaunched
	ErrAlreadyLaunched
	ErrTokensAlreadyClaimed
	ErrRefundsUnavailable
	ErrInsufficientFunds
	ErrBeneficiaryExists
	ErrNoPendingAction
	ErrNoPendingUpgrade
	ErrUpgradesDisabled
	ErrInvalidTimelockDelay
)

// customErrorOffset keeps program codes clear of the runtime's builtin ones.
const customErrorOffset = 6000

var programErrors = [...]struct{ name, msg string }{
	ErrInvalidInstruction:     {"InvalidInstruction", "invalid instruction"},
	ErrNotRentExempt:          {"NotRentExempt", "account is not rent exempt"},
	ErrUnauthorized:           {"Unauthorized", "missing or wrong authority"},
	ErrInvalidAccountOwner:    {"InvalidAccountOwner", "account has the wrong owner"},
	ErrInvalidMint:            {"InvalidMint", "invalid mint"},
	ErrCalculation:            {"CalculationError", "arithmetic overflow, underflow or division by zero"},
	ErrInvalidOracleData:      {"InvalidOracleData", "oracle data is invalid"},
	ErrStaleOracleData:        {"StaleOracleData", "oracle data is stale"},
	ErrPriceManipulation:      {"PriceManipulationDetected", "price change exceeds the allowed bound"},
	ErrUnauthorizedBurnSource: {"UnauthorizedBurnSource", "burns may only come from the burn treasury"},
	ErrInvalidFeeAmount:       {"InvalidFeeAmount", "transfer fee exceeds 1%"},
	ErrNoContribution:         {"NoContribution", "no contribution found"},
	ErrRefundAlreadyClaimed:   {"RefundAlreadyClaimed", "refund already claimed"},
	ErrRefundPeriodActive:     {"RefundPeriodActive", "refund period has not started"},
	ErrRefundPeriodEnded:      {"RefundPeriodEnded", "refund period has ended"},
	ErrDevFundsNotRefundable:  {"DevFundsNotRefundable", "development funds are not refundable"},
	ErrPresaleNotStarted:      {"PresaleNotStarted", "presale has not started"},
	ErrPresaleEnded:           {"PresaleEnded", "presale has ended"},
	ErrBeneficiaryNotFound:    {"BeneficiaryNotFound", "beneficiary not found"},
	ErrNoTokensToRelease:      {"NoTokensToRelease", "no tokens to release"},
	ErrInvalidMintAuthority:   {"InvalidMintAuthority", "mint authority is not the program"},
	ErrInvalidBurnTreasury:    {"InvalidBurnTreasury", "invalid burn treasury"},
	ErrTooEarlyForExecution:   {"TooEarlyForExecution", "too early for execution"},
	ErrAlreadyInitialized:     {"AlreadyInitialized", "account already initialized"},
	ErrUninitializedAccount:   {"UninitializedAccount", "account not initialized"},
	ErrInvalidSeeds:           {"InvalidSeeds", "derived address mismatch"},
	ErrInvalidParameters:      {"InvalidParameters", "invalid parameters"},
	ErrInvalidPurchaseAmount:  {"InvalidPurchaseAmount", "purchase amount outside the allowed range"},
	ErrHardCapExceeded:        {"HardCapExceeded", "hard cap would be exceeded"},
	ErrPresaleFull:            {"PresaleFull", "presale contribution capacity reached"},
	ErrCapacityExceeded:       {"CapacityExceeded", "capacity limit reached"},
	ErrTooManyAssets:          {"TooManyAssets", "too many accepted assets"},
	ErrAssetAlreadySupported:  {"AssetAlreadySupported", "asset already accepted"},
	ErrPresaleActive:          {"PresaleActive", "presale is still active"},
	ErrNotLaunched:            {"NotLaunched", "token not launched yet"},
	ErrAlreadyLaunched:        {"AlreadyLaunched", "token already launched"},
	ErrTokensAlreadyClaimed:   {"TokensAlreadyClaimed", "purchased tokens already claimed"},
	ErrRefundsUnavailable:     {"RefundsUnavailable", "soft cap reached, contributions are not refundable"},
	ErrInsufficientFunds:      {"InsufficientFunds", "insufficient funds"},
	ErrBeneficiaryExists:      {"BeneficiaryExists", "beneficiary already registered"},
	ErrNoPendingAction:        {"NoPendingAction", "no pending supply action for this observation"},
	ErrNoPendingUpgrade:       {"NoPendingUpgrade", "no upgrade pending"},
	ErrUpgradesDisabled:       {"UpgradesDisabled", "upgrades permanently disabled"},
	ErrInvalidTimelockDelay:   {"InvalidTimelockDelay", "timelock delay out of bounds"},
}

func (e ProgramError) Error() string {
	if int(e) < len(programErrors) {
		return programErrors[e].msg
	}
	return "unknown program error"
}

// Name is the enum identifier, e.g. "RefundAlreadyClaimed".
func (e ProgramError) Name() string {
	if int(e) < len(programErrors) {
		return programErrors[e].name
	}
	return "Unknown"
}

// Code is the numeric code clients map to UI messages.
func (e ProgramError) Code() uint32 {
	return customErrorOffset + uint32(e)
}

// CodeOf digs the ProgramError out of a wrapped failure.
func CodeOf(err error) (ProgramError, bool) {
	var pe ProgramError
	if errors.As(err, &pe) {
		return pe, true
	}
	return 0, false
}

// fail attaches a diagnostic to a program error.
func fail(code ProgramError, format string, args ...interface{}) error {
	return errors.Wrapf(code, format, args...)
}

// calcErr maps safemath failures onto CalculationError.
func calcErr(err error, what string) error {
	return errors.Wrapf(ErrCalculation, "%s: %v", what, err)
}

// tokenErr translates failures of the token-extension collaborator.
func tokenErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := CodeOf(err); ok {
		return err
	}
	code := ErrInvalidInstruction
	switch {
	case errors.Is(err, token2022.ErrInsufficientFunds):
		code = ErrInsufficientFunds
	case errors.Is(err, token2022.ErrMintNotFound),
		errors.Is(err, token2022.ErrMintMismatch),
		errors.Is(err, token2022.ErrMintAlreadyExists):
		code = ErrInvalidMint
	case errors.Is(err, token2022.ErrAuthorityMismatch):
		code = ErrUnauthorized
	case errors.Is(err, token2022.ErrInvalidAccountOwner),
		errors.Is(err, token2022.ErrInvalidAccountDataSize):
		code = ErrInvalidAccountOwner
	case errors.Is(err, token2022.ErrAccountNotFound):
		code = ErrUninitializedAccount
	case errors.Is(err, token2022.ErrInvalidFeeParameters):
		code = ErrInvalidFeeAmount
	case errors.Is(err, safemath.ErrOverflow),
		errors.Is(err, safemath.ErrUnderflow),
		errors.Is(err, safemath.ErrDivisionByZero):
		code = ErrCalculation
	case errors.Is(err, sdk.ErrInsufficientLamports):
		code = ErrNotRentExempt
	}
	return errors.Wrapf(code, "%s: %v", what, err)
}
