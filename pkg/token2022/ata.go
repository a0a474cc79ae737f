package token2022

import (
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the token-extension program every mint and token account here belongs to.
var ProgramID = solana.Token2022ProgramID

func FindAssociatedTokenAddress(
	wallet solana.PublicKey,
	mint solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		wallet[:],
		ProgramID[:],
		mint[:],
	},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// MustAssociatedTokenAddress is FindAssociatedTokenAddress for callers that already hold valid keys.
func MustAssociatedTokenAddress(wallet, mint solana.PublicKey) solana.PublicKey {
	addr, _, err := FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		panic(err)
	}
	return addr
}
