package contract

import (
	"github.com/gagliardetto/solana-go"
)

// maxTokenDecimals keeps 10^decimals and the token amount math comfortably inside u64.
const maxTokenDecimals = 9

// initializeToken creates the mint config and the mint itself, handing mint authority to
// the program PDA so supply changes can only ever come from the program.
func (c *invocation) initializeToken(args *InitializeTokenArgs) error {
	cfgMeta, mintMeta, authMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	if err := c.requireWritable(cfgMeta, mintMeta, authMeta); err != nil {
		return err
	}
	if err := c.requireSigner(authMeta); err != nil {
		return err
	}
	// the mint is a fresh keypair account, its key has to sign the creation
	if err := c.requireSigner(mintMeta); err != nil {
		return err
	}
	if len(args.Name) == 0 || len(args.Name) > MaxNameLength {
		return fail(ErrInvalidParameters, "name length %d", len(args.Name))
	}
	if len(args.Symbol) == 0 || len(args.Symbol) > MaxSymbolLength {
		return fail(ErrInvalidParameters, "symbol length %d", len(args.Symbol))
	}
	if args.Decimals > maxTokenDecimals {
		return fail(ErrInvalidParameters, "decimals %d", args.Decimals)
	}
	if args.TransferFeeBps > MaxTransferFeeBps {
		return fail(ErrInvalidFeeAmount, "fee %d bps above %d", args.TransferFeeBps, MaxTransferFeeBps)
	}

	mint := mintMeta.PublicKey
	bump, err := findAddress(c.programID, cfgMeta.PublicKey, mintConfigSeeds(mint))
	if err != nil {
		return err
	}
	mintAuthority, authBump, err := FindMintAuthorityAddress(c.programID, mint)
	if err != nil {
		return fail(ErrInvalidSeeds, "mint authority: %v", err)
	}

	cfg := &MintConfig{
		Authority:         authMeta.PublicKey,
		Mint:              mint,
		Name:              args.Name,
		Symbol:            args.Symbol,
		Decimals:          args.Decimals,
		TransferFeeBps:    args.TransferFeeBps,
		MaxFee:            args.MaxFee,
		Bump:              bump,
		MintAuthorityBump: authBump,
	}
	if err := c.createEntity(cfgMeta, authMeta, MintConfigSpace, cfg); err != nil {
		return err
	}
	if err := c.tokens.InitializeMint(mint, mintAuthority, args.Decimals, args.TransferFeeBps, args.MaxFee); err != nil {
		return tokenErr(err, "initialize mint")
	}
	c.emitTokenInitialized(mint, authMeta.PublicKey, args.Decimals, args.TransferFeeBps)
	return nil
}

// loadMintConfig reads the config and checks it sits at its derived address.
func (c *invocation) loadMintConfig(meta *solana.AccountMeta) (*MintConfig, error) {
	cfg := new(MintConfig)
	if err := c.loadEntity(meta, cfg); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, cfg.Bump, mintConfigSeeds(cfg.Mint)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *invocation) setTransferFee(args *SetTransferFeeArgs) error {
	cfgMeta, mintMeta, authMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	cfg, err := c.loadMintConfig(cfgMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, cfg.Authority); err != nil {
		return err
	}
	if args.Bps > MaxTransferFeeBps {
		return fail(ErrInvalidFeeAmount, "fee %d bps above %d", args.Bps, MaxTransferFeeBps)
	}
	if err := c.requireWritable(mintMeta); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, cfg.Mint); err != nil {
		return err
	}
	mintAuthority, err := c.requireProgramMintAuthority(mintAuthorityMeta(c.programID, cfg), cfg.Mint)
	if err != nil {
		return err
	}
	if err := c.tokens.SetTransferFee(cfg.Mint, mintAuthority, args.Bps, args.MaxFee); err != nil {
		return tokenErr(err, "set transfer fee")
	}
	cfg.TransferFeeBps = args.Bps
	cfg.MaxFee = args.MaxFee
	if err := c.saveEntity(cfgMeta, cfg); err != nil {
		return err
	}
	c.emitTransferFeeSet(cfg.Mint, args.Bps, args.MaxFee)
	return nil
}

// mintAuthorityMeta rebuilds the PDA meta from the stored bump, for handlers that do not
// take the mint authority as an account.
func mintAuthorityMeta(programID solana.PublicKey, cfg *MintConfig) *solana.AccountMeta {
	seeds := append(mintAuthoritySeeds(cfg.Mint), []byte{cfg.MintAuthorityBump})
	addr, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return solana.Meta(solana.PublicKey{})
	}
	return solana.Meta(addr)
}

func (c *invocation) updateTokenMetadata(args *UpdateTokenMetadataArgs) error {
	cfgMeta, authMeta := c.accounts[0], c.accounts[1]
	cfg, err := c.loadMintConfig(cfgMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, cfg.Authority); err != nil {
		return err
	}
	if args.Name != nil {
		if len(*args.Name) == 0 || len(*args.Name) > MaxNameLength {
			return fail(ErrInvalidParameters, "name length %d", len(*args.Name))
		}
		cfg.Name = *args.Name
	}
	if args.Symbol != nil {
		if len(*args.Symbol) == 0 || len(*args.Symbol) > MaxSymbolLength {
			return fail(ErrInvalidParameters, "symbol length %d", len(*args.Symbol))
		}
		cfg.Symbol = *args.Symbol
	}
	if args.URI != nil {
		if len(*args.URI) > MaxURILength {
			return fail(ErrInvalidParameters, "uri length %d", len(*args.URI))
		}
		cfg.URI = *args.URI
	}
	if err := c.saveEntity(cfgMeta, cfg); err != nil {
		return err
	}
	c.emitMetadataUpdated(cfg.Mint, cfg)
	return nil
}
