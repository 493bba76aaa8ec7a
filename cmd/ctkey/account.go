package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/internal/balancetracker"
	"github.com/tos-network/ctoken/internal/flags"
)

var (
	mintFlag = &cli.StringFlag{
		Name:     "mint",
		Usage:    "mint address",
		Required: true,
		Category: flags.LedgerCategory,
	}
	ownerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "account owner address",
		Required: true,
		Category: flags.LedgerCategory,
	}
	trackFileFlag = &cli.StringFlag{
		Name:     "track",
		Usage:    "balance tracker file to validate and update",
		Category: flags.TrackerCategory,
	}
	trackSequenceFlag = &cli.Uint64Flag{
		Name:     "sequence",
		Usage:    "ledger sequence the snapshot is taken at",
		Category: flags.TrackerCategory,
	}
	trackAcceptRollbackFlag = &cli.BoolFlag{
		Name:     "track-accept-rollback",
		Usage:    "accept a tracker sequence that moved backward",
		Category: flags.TrackerCategory,
	}
)

func parseAddress(ctx *cli.Context, flag *cli.StringFlag) common.Address {
	s := ctx.String(flag.Name)
	if !common.IsHexAddress(s) {
		utils.Fatalf("Invalid --%s address %q", flag.Name, s)
	}
	return common.HexToAddress(s)
}

func writeAccountTable(w io.Writer, st balancetracker.State, s *ctoken.AccountState) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Mint", st.Mint},
		{"Owner", st.Owner},
		{"Available", strconv.FormatUint(st.Available, 10)},
		{"Pending", strconv.FormatUint(st.Pending, 10)},
		{"Pending credits", fmt.Sprintf("%d / %d", s.PendingCreditCounter, s.MaximumPendingCredits)},
		{"Approved", strconv.FormatBool(s.Approved)},
		{"Withheld fee", strconv.FormatBool(!s.WithheldFee.IsZero())},
		{"Sequence", strconv.FormatUint(st.Sequence, 10)},
	})
	table.Render()
}

var commandAccount = &cli.Command{
	Name:      "account",
	Usage:     "decrypt a confidential account stored in a ledger database",
	ArgsUsage: "<keyfile>",
	Description: `
Read a confidential account from the ledger database, decrypt its available
and pending balances, and optionally check the result against a balance
tracker file before updating it.

Example:
    ctkey account --datadir ./ledger --mint 0x.. --owner 0x.. --track tracker.json --sequence 42 keyfile.json
`,
	Flags: []cli.Flag{
		utils.DataDirFlag,
		utils.CacheFlag,
		utils.HandlesFlag,
		mintFlag,
		ownerFlag,
		trackFileFlag,
		trackSequenceFlag,
		trackAcceptRollbackFlag,
		jsonFlag,
	},
	Action: func(ctx *cli.Context) error {
		mint, owner := parseAddress(ctx, mintFlag), parseAddress(ctx, ownerFlag)
		keys, err := loadKeyFile(keyfileArg(ctx))
		if err != nil {
			utils.Fatalf("Failed to read keyfile: %v", err)
		}
		db := utils.MakeDatabase(ctx, true)
		defer db.Close()

		s := rawdb.ReadAccountState(db, mint, owner)
		if s == nil {
			utils.Fatalf("No confidential account for %s at mint %s", owner.Hex(), mint.Hex())
		}
		if s.ElGamalPubkey != ctoken.PubkeyFrom(keys.keypair.Public) {
			utils.Fatalf("Keyfile %s does not belong to this account", keys.file.ID)
		}
		st, err := balancetracker.Snapshot(mint, owner, s, keys.keypair.Secret, keys.aeKey, ctx.Uint64(trackSequenceFlag.Name))
		if err != nil {
			utils.Fatalf("Failed to decrypt account: %v", err)
		}
		if s.PendingCreditCounter >= s.MaximumPendingCredits {
			fmt.Fprintln(ctx.App.ErrWriter, color.YellowString("Pending credit limit reached; apply the pending balance to receive more"))
		}
		if path := ctx.String(trackFileFlag.Name); path != "" {
			prev, err := balancetracker.Load(path)
			if err != nil {
				utils.Fatalf("Failed to load tracker: %v", err)
			}
			if err := balancetracker.Validate(prev, st, ctx.Bool(trackAcceptRollbackFlag.Name)); err != nil {
				utils.Fatalf("Tracker check failed: %v", err)
			}
			if err := balancetracker.Save(path, st); err != nil {
				utils.Fatalf("Failed to save tracker: %v", err)
			}
			log.Info("Updated balance tracker", "path", path, "sequence", st.Sequence)
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(ctx, st)
			return nil
		}
		writeAccountTable(ctx.App.Writer, st, s)
		return nil
	},
}
