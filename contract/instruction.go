package contract

import (
	"bytes"
	"fmt"
	"reflect"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	format "github.com/gagliardetto/solana-go/text/format"
	treeout "github.com/gagliardetto/treeout"
)

const ProgramName = "Launchpad"

// Tag is the first byte of the instruction data.
type Tag uint8

const (
	TagInitializeToken Tag = iota
	TagSetTransferFee
	TagUpdateTokenMetadata
	TagInitializePresale
	TagAddSupportedAsset
	TagBuyTokens
	TagEndPresale
	TagLaunchToken
	TagExpandPresaleCapacity
	TagClaimRefund
	TagClaimDevFundRefund
	TagWithdrawLockedFunds
	TagInitializeVesting
	TagAddVestingBeneficiary
	TagReleaseVestedTokens
	TagInitializeAutonomousController
	TagUpdateOraclePrice
	TagExecuteAutonomousMint
	TagExecuteAutonomousBurn
	TagInitializeBurnTreasury
	TagDepositToBurnTreasury
	TagInitializeUpgradeTimelock
	TagProposeUpgrade
	TagExecuteUpgrade
	TagPermanentlyDisableUpgrades
	TagCancelUpgrade
	TagClaimPresaleTokens
	TagWithdrawDevFunds
)

// instructionDefs lists name and ordered account names per tag. The account order is the
// wire contract with clients, handlers index into it directly.
var instructionDefs = map[Tag]struct {
	name     string
	accounts []string
	args     func() interface{}
}{
	TagInitializeToken:                {"InitializeToken", []string{"mintConfig", "mint", "authority"}, func() interface{} { return new(InitializeTokenArgs) }},
	TagSetTransferFee:                 {"SetTransferFee", []string{"mintConfig", "mint", "authority"}, func() interface{} { return new(SetTransferFeeArgs) }},
	TagUpdateTokenMetadata:            {"UpdateTokenMetadata", []string{"mintConfig", "authority"}, func() interface{} { return new(UpdateTokenMetadataArgs) }},
	TagInitializePresale:              {"InitializePresale", []string{"presale", "mintConfig", "mint", "lockedTreasury", "devTreasury", "authority"}, func() interface{} { return new(InitializePresaleArgs) }},
	TagAddSupportedAsset:              {"AddSupportedAsset", []string{"presale", "authority", "assetMint"}, func() interface{} { return new(AddSupportedAssetArgs) }},
	TagBuyTokens:                      {"BuyTokens", []string{"presale", "buyer", "buyerTokenAccount", "paymentMint", "lockedTreasuryTokenAccount", "devTreasuryTokenAccount"}, func() interface{} { return new(BuyTokensArgs) }},
	TagEndPresale:                     {"EndPresale", []string{"presale", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagLaunchToken:                    {"LaunchToken", []string{"presale", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagExpandPresaleCapacity:          {"ExpandPresaleCapacity", []string{"presale", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagClaimRefund:                    {"ClaimRefund", []string{"presale", "buyer", "paymentMint", "lockedTreasury", "lockedTreasuryTokenAccount", "buyerTokenAccount"}, func() interface{} { return new(EmptyArgs) }},
	TagClaimDevFundRefund:             {"ClaimDevFundRefund", []string{"presale", "buyer", "paymentMint", "devTreasury", "devTreasuryTokenAccount", "buyerTokenAccount"}, func() interface{} { return new(EmptyArgs) }},
	TagWithdrawLockedFunds:            {"WithdrawLockedFunds", []string{"presale", "authority", "paymentMint", "lockedTreasury", "lockedTreasuryTokenAccount", "destination"}, func() interface{} { return new(EmptyArgs) }},
	TagInitializeVesting:              {"InitializeVesting", []string{"vesting", "mintConfig", "authority"}, func() interface{} { return new(InitializeVestingArgs) }},
	TagAddVestingBeneficiary:          {"AddVestingBeneficiary", []string{"vesting", "authority"}, func() interface{} { return new(AddVestingBeneficiaryArgs) }},
	TagReleaseVestedTokens:            {"ReleaseVestedTokens", []string{"vesting", "mint", "mintAuthority", "beneficiaryTokenAccount"}, func() interface{} { return new(ReleaseVestedTokensArgs) }},
	TagInitializeAutonomousController: {"InitializeAutonomousController", []string{"controller", "mintConfig", "mint", "authority"}, func() interface{} { return new(InitializeControllerArgs) }},
	TagUpdateOraclePrice:              {"UpdateOraclePrice", []string{"controller", "mint", "primaryFeed"}, func() interface{} { return new(EmptyArgs) }},
	TagExecuteAutonomousMint:          {"ExecuteAutonomousMint", []string{"controller", "mint", "mintAuthority", "recipientTokenAccount"}, func() interface{} { return new(EmptyArgs) }},
	TagExecuteAutonomousBurn:          {"ExecuteAutonomousBurn", []string{"controller", "mint", "burnTreasury", "burnTreasuryTokenAccount"}, func() interface{} { return new(EmptyArgs) }},
	TagInitializeBurnTreasury:         {"InitializeBurnTreasury", []string{"burnTreasury", "controller", "mint", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagDepositToBurnTreasury:          {"DepositToBurnTreasury", []string{"burnTreasury", "mint", "depositor", "depositorTokenAccount", "burnTreasuryTokenAccount"}, func() interface{} { return new(DepositToBurnTreasuryArgs) }},
	TagInitializeUpgradeTimelock:      {"InitializeUpgradeTimelock", []string{"timelock", "authority", "programData"}, func() interface{} { return new(InitializeUpgradeTimelockArgs) }},
	TagProposeUpgrade:                 {"ProposeUpgrade", []string{"timelock", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagExecuteUpgrade:                 {"ExecuteUpgrade", []string{"timelock", "authority", "buffer"}, func() interface{} { return new(ExecuteUpgradeArgs) }},
	TagPermanentlyDisableUpgrades:     {"PermanentlyDisableUpgrades", []string{"timelock", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagCancelUpgrade:                  {"CancelUpgrade", []string{"timelock", "authority"}, func() interface{} { return new(EmptyArgs) }},
	TagClaimPresaleTokens:             {"ClaimPresaleTokens", []string{"presale", "buyer", "mint", "mintAuthority", "buyerTokenAccount"}, func() interface{} { return new(EmptyArgs) }},
	TagWithdrawDevFunds:               {"WithdrawDevFunds", []string{"presale", "authority", "paymentMint", "devTreasury", "devTreasuryTokenAccount", "destination"}, func() interface{} { return new(EmptyArgs) }},
}

func (t Tag) String() string {
	if def, ok := instructionDefs[t]; ok {
		return def.name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// -----------------------------------------------------------------------------
// Payloads
// -----------------------------------------------------------------------------

type EmptyArgs struct{}

type InitializeTokenArgs struct {
	Name           string
	Symbol         string
	Decimals       uint8
	TransferFeeBps uint16
	MaxFee         uint64
}

type SetTransferFeeArgs struct {
	Bps    uint16
	MaxFee uint64
}

type UpdateTokenMetadataArgs struct {
	Name   *string `bin:"optional"`
	Symbol *string `bin:"optional"`
	URI    *string `bin:"optional"`
}

type InitializePresaleArgs struct {
	StartTime     int64
	EndTime       int64
	PricePerToken uint64
	HardCap       uint64
	SoftCap       uint64
	MinPurchase   uint64
	MaxPurchase   uint64
}

type AddSupportedAssetArgs struct {
	AssetMint solana.PublicKey
}

type BuyTokensArgs struct {
	Amount uint64
}

type InitializeVestingArgs struct {
	TotalTokens     uint64
	StartTime       int64
	ReleaseInterval int64
	NumReleases     uint32
}

type AddVestingBeneficiaryArgs struct {
	Beneficiary solana.PublicKey
	Amount      uint64
}

type ReleaseVestedTokensArgs struct {
	Beneficiary solana.PublicKey
}

type InitializeControllerArgs struct {
	Params ControllerParams
}

type DepositToBurnTreasuryArgs struct {
	Amount uint64
}

type InitializeUpgradeTimelockArgs struct {
	Delay int64
}

type ExecuteUpgradeArgs struct {
	Buffer solana.PublicKey
}

// -----------------------------------------------------------------------------
// Instruction
// -----------------------------------------------------------------------------

// Instruction is a built or decoded program instruction. It satisfies solana.Instruction
// so it can be dropped into a transaction builder as is.
type Instruction struct {
	programID solana.PublicKey
	Tag       Tag
	Args      interface{}
	solana.AccountMetaSlice
}

var _ solana.Instruction = (*Instruction)(nil)

func (inst *Instruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *Instruction) Accounts() []*solana.AccountMeta {
	return inst.AccountMetaSlice
}

// Data is the tag byte followed by the borsh encoded payload.
func (inst *Instruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(inst.Tag))
	if inst.Args != nil {
		if err := bin.NewBorshEncoder(buf).Encode(inst.Args); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeInstruction parses raw instruction data, rejecting unknown tags, short
// account lists and trailing bytes with InvalidInstruction.
func DecodeInstruction(programID solana.PublicKey, accounts []*solana.AccountMeta, data []byte) (*Instruction, error) {
	if len(data) == 0 {
		return nil, fail(ErrInvalidInstruction, "empty data")
	}
	tag := Tag(data[0])
	def, ok := instructionDefs[tag]
	if !ok {
		return nil, fail(ErrInvalidInstruction, "unknown tag %d", data[0])
	}
	lo, hi := len(def.accounts), len(def.accounts)
	if tag == TagUpdateOraclePrice {
		hi += MaxBackupFeeds
	}
	if len(accounts) < lo || len(accounts) > hi {
		return nil, fail(ErrInvalidInstruction, "%s expects %d accounts, got %d", def.name, lo, len(accounts))
	}
	args := def.args()
	dec := bin.NewBorshDecoder(data[1:])
	if err := dec.Decode(args); err != nil {
		return nil, fail(ErrInvalidInstruction, "%s payload: %v", def.name, err)
	}
	if dec.Remaining() != 0 {
		return nil, fail(ErrInvalidInstruction, "%s payload has %d trailing bytes", def.name, dec.Remaining())
	}
	return &Instruction{programID: programID, Tag: tag, Args: args, AccountMetaSlice: accounts}, nil
}

func (inst *Instruction) EncodeToTree(parent treeout.Branches) {
	def := instructionDefs[inst.Tag]
	parent.Child(format.Program(ProgramName, inst.programID)).
		//
		ParentFunc(func(programBranch treeout.Branches) {
			programBranch.Child(format.Instruction(inst.Tag.String())).
				//
				ParentFunc(func(instructionBranch treeout.Branches) {
					params := argFields(inst.Args)
					instructionBranch.Child(fmt.Sprintf("Params[len=%d]", len(params))).ParentFunc(func(paramsBranch treeout.Branches) {
						for _, p := range params {
							paramsBranch.Child(format.Param(p.name, p.value))
						}
					})
					instructionBranch.Child(fmt.Sprintf("Accounts[len=%d]", len(inst.AccountMetaSlice))).ParentFunc(func(accountsBranch treeout.Branches) {
						for i := range inst.AccountMetaSlice {
							name := "backupFeed"
							if i < len(def.accounts) {
								name = def.accounts[i]
							}
							accountsBranch.Child(format.Meta(name, inst.AccountMetaSlice.Get(i)))
						}
					})
				})
		})
}

type argField struct {
	name  string
	value interface{}
}

// argFields flattens a payload struct for display, nested structs are expanded one level.
func argFields(args interface{}) []argField {
	if args == nil {
		return nil
	}
	rv := reflect.Indirect(reflect.ValueOf(args))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	var out []argField
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		switch {
		case f.Kind() == reflect.Ptr && f.IsNil():
			out = append(out, argField{rt.Field(i).Name, "<none>"})
		case f.Kind() == reflect.Ptr:
			out = append(out, argField{rt.Field(i).Name, f.Elem().Interface()})
		case f.Kind() == reflect.Struct:
			for _, sub := range argFields(f.Interface()) {
				out = append(out, argField{rt.Field(i).Name + "." + sub.name, sub.value})
			}
		default:
			out = append(out, argField{rt.Field(i).Name, f.Interface()})
		}
	}
	return out
}
