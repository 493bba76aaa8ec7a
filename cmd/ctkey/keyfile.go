package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/internal/flags"
)

// keyFile holds the two secrets of a confidential account: the ElGamal
// secret that decrypts balances and the key of the decryptable mirror.
type keyFile struct {
	ID     uuid.UUID     `json:"id"`
	Pubkey hexutil.Bytes `json:"pubkey"`
	Secret hexutil.Bytes `json:"elgamalSecret"`
	AeKey  hexutil.Bytes `json:"aeKey"`
}

type accountKeys struct {
	file    *keyFile
	keypair *elgamal.Keypair
	aeKey   *authenc.AeKey
}

// newAccountKeys generates an ElGamal keypair and derives the mirror key
// from its secret.
func newAccountKeys() (*accountKeys, error) {
	kp, err := elgamal.NewKeypair()
	if err != nil {
		return nil, err
	}
	ae, err := authenc.DeriveAeKey(kp.Secret.Bytes())
	if err != nil {
		return nil, err
	}
	return &accountKeys{
		file: &keyFile{
			ID:     uuid.New(),
			Pubkey: kp.Public.Bytes(),
			Secret: kp.Secret.Bytes(),
			AeKey:  ae[:],
		},
		keypair: kp,
		aeKey:   ae,
	}, nil
}

func writeKeyFile(path string, kf *keyFile) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keyfile already exists at %s", path)
	}
	raw, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

func loadKeyFile(path string) (*accountKeys, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf keyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("decode keyfile: %w", err)
	}
	kp, err := elgamal.KeypairFromSecretBytes(kf.Secret)
	if err != nil {
		return nil, fmt.Errorf("keyfile secret: %w", err)
	}
	if len(kf.Pubkey) != 0 && ctoken.PubkeyFrom(kp.Public) != pubkeyBytes(kf.Pubkey) {
		return nil, errors.New("keyfile pubkey does not match its secret")
	}
	ae, err := authenc.AeKeyFromBytes(kf.AeKey)
	if err != nil {
		return nil, fmt.Errorf("keyfile ae key: %w", err)
	}
	return &accountKeys{file: &kf, keypair: kp, aeKey: ae}, nil
}

func pubkeyBytes(raw []byte) ctoken.Pubkey {
	var pk ctoken.Pubkey
	copy(pk[:], raw)
	return pk
}

func keyfileArg(ctx *cli.Context) string {
	if path := ctx.Args().First(); path != "" {
		return path
	}
	return defaultKeyfileName
}

var (
	jsonFlag    = utils.JSONFlag
	privateFlag = &cli.BoolFlag{
		Name:     "private",
		Usage:    "include the secrets in the output",
		Category: flags.KeyCategory,
	}
)

type outputKey struct {
	ID     string `json:"id"`
	Pubkey string `json:"pubkey"`
	Secret string `json:"elgamalSecret,omitempty"`
	AeKey  string `json:"aeKey,omitempty"`
}

func printKey(ctx *cli.Context, keys *accountKeys, private bool) {
	out := outputKey{ID: keys.file.ID.String(), Pubkey: hexutil.Encode(keys.file.Pubkey)}
	if private {
		out.Secret = hexutil.Encode(keys.file.Secret)
		out.AeKey = hexutil.Encode(keys.file.AeKey)
	}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx, out)
		return
	}
	w := ctx.App.Writer
	fmt.Fprintln(w, "ID:            ", out.ID)
	fmt.Fprintln(w, "Public key:    ", out.Pubkey)
	if private {
		fmt.Fprintln(w, "ElGamal secret:", out.Secret)
		fmt.Fprintln(w, "AE key:        ", out.AeKey)
	}
}

func mustPrintJSON(ctx *cli.Context, v interface{}) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		utils.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Fprintln(ctx.App.Writer, string(raw))
}

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate a new confidential account keyfile",
	ArgsUsage: "[ <keyfile> ]",
	Description: `
Generate a new ElGamal keypair and decryptable-balance key and write them to
a keyfile. The keyfile is not encrypted; keep it private.
`,
	Flags: []cli.Flag{jsonFlag},
	Action: func(ctx *cli.Context) error {
		path := keyfileArg(ctx)
		keys, err := newAccountKeys()
		if err != nil {
			utils.Fatalf("Failed to generate keys: %v", err)
		}
		if err := writeKeyFile(path, keys.file); err != nil {
			utils.Fatalf("Failed to write keyfile: %v", err)
		}
		printKey(ctx, keys, false)
		return nil
	},
}

var commandInspect = &cli.Command{
	Name:      "inspect",
	Usage:     "inspect a keyfile",
	ArgsUsage: "<keyfile>",
	Flags:     []cli.Flag{jsonFlag, privateFlag},
	Action: func(ctx *cli.Context) error {
		keys, err := loadKeyFile(keyfileArg(ctx))
		if err != nil {
			utils.Fatalf("Failed to read keyfile: %v", err)
		}
		printKey(ctx, keys, ctx.Bool(privateFlag.Name))
		return nil
	},
}
