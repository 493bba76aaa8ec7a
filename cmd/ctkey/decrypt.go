package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/internal/flags"
)

var (
	ciphertextFlag = &cli.StringFlag{
		Name:     "ciphertext",
		Usage:    "hex encoded ElGamal ciphertext (commitment || handle)",
		Category: flags.KeyCategory,
	}
	mirrorFlag = &cli.StringFlag{
		Name:     "mirror",
		Usage:    "hex encoded decryptable balance",
		Category: flags.KeyCategory,
	}
	maxAmountFlag = &cli.Uint64Flag{
		Name:     "max-amount",
		Usage:    "largest amount the ciphertext search covers (default from config)",
		Category: flags.KeyCategory,
	}
)

type decryptOutput struct {
	Ciphertext *uint64 `json:"ciphertext,omitempty"`
	Mirror     *uint64 `json:"mirror,omitempty"`
}

var commandDecrypt = &cli.Command{
	Name:      "decrypt",
	Usage:     "decrypt a ciphertext or decryptable balance with a keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Decrypt an ElGamal ciphertext (by bounded discrete log search) and/or a
decryptable balance. The keyfile never leaves this machine.
`,
	Flags: []cli.Flag{ciphertextFlag, mirrorFlag, maxAmountFlag, jsonFlag},
	Action: func(ctx *cli.Context) error {
		if !ctx.IsSet(ciphertextFlag.Name) && !ctx.IsSet(mirrorFlag.Name) {
			utils.Fatalf("Nothing to decrypt: set --%s or --%s", ciphertextFlag.Name, mirrorFlag.Name)
		}
		cfg := makeConfig(ctx)
		keys, err := loadKeyFile(keyfileArg(ctx))
		if err != nil {
			utils.Fatalf("Failed to read keyfile: %v", err)
		}
		maxAmount := cfg.Decrypt.MaxAmount
		if ctx.IsSet(maxAmountFlag.Name) {
			maxAmount = ctx.Uint64(maxAmountFlag.Name)
		}

		var out decryptOutput
		if ctx.IsSet(ciphertextFlag.Name) {
			raw, err := hexutil.Decode(ctx.String(ciphertextFlag.Name))
			if err != nil {
				utils.Fatalf("Invalid ciphertext: %v", err)
			}
			stored, err := ctoken.CiphertextFromBytes(raw)
			if err != nil {
				utils.Fatalf("Invalid ciphertext: %v", err)
			}
			ct, err := stored.Decode()
			if err != nil {
				utils.Fatalf("Invalid ciphertext: %v", err)
			}
			amount, ok := keys.keypair.Secret.Decrypt(ct, maxAmount)
			if !ok {
				utils.Fatalf("Ciphertext does not decrypt to an amount up to %d", maxAmount)
			}
			out.Ciphertext = &amount
		}
		if ctx.IsSet(mirrorFlag.Name) {
			raw, err := hexutil.Decode(ctx.String(mirrorFlag.Name))
			if err != nil {
				utils.Fatalf("Invalid decryptable balance: %v", err)
			}
			mirror, err := authenc.AeCiphertextFromBytes(raw)
			if err != nil {
				utils.Fatalf("Invalid decryptable balance: %v", err)
			}
			amount, err := keys.aeKey.Decrypt(mirror)
			if err != nil {
				utils.Fatalf("Failed to decrypt balance: %v", err)
			}
			out.Mirror = &amount
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(ctx, out)
			return nil
		}
		if out.Ciphertext != nil {
			fmt.Fprintln(ctx.App.Writer, "Ciphertext:", *out.Ciphertext)
		}
		if out.Mirror != nil {
			fmt.Fprintln(ctx.App.Writer, "Decryptable balance:", *out.Mirror)
		}
		return nil
	},
}
