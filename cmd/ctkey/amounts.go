package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/internal/flags"
)

var (
	feeRateFlag = &cli.UintFlag{
		Name:     "rate",
		Usage:    "transfer fee rate in basis points (0-10000)",
		Category: flags.AmountCategory,
	}
	feeMaxFlag = &cli.Uint64Flag{
		Name:     "max",
		Usage:    "maximum fee per transfer",
		Category: flags.AmountCategory,
	}
	mintBurnFlag = &cli.BoolFlag{
		Name:     "mint-burn",
		Usage:    "use the mint and burn split instead of the transfer split",
		Category: flags.AmountCategory,
	}
)

func parseAmounts(ctx *cli.Context) []uint64 {
	if ctx.NArg() == 0 {
		utils.Fatalf("No amounts given")
	}
	amounts := make([]uint64, 0, ctx.NArg())
	for _, arg := range ctx.Args().Slice() {
		for _, field := range utils.SplitAndTrim(arg) {
			v, err := strconv.ParseUint(field, 0, 64)
			if err != nil {
				utils.Fatalf("Invalid amount %q: %v", field, err)
			}
			amounts = append(amounts, v)
		}
	}
	return amounts
}

func writeFeeTable(w io.Writer, quotes []ctoken.FeeQuote) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Amount", "Raw fee", "Fee", "Net", "Delta", "Claimed", "Capped"})
	for _, q := range quotes {
		table.Append([]string{
			strconv.FormatUint(q.Amount, 10),
			strconv.FormatUint(q.RawFee, 10),
			strconv.FormatUint(q.Fee, 10),
			strconv.FormatUint(q.Net, 10),
			strconv.FormatUint(q.Delta, 10),
			strconv.FormatUint(q.ClaimedDelta, 10),
			strconv.FormatBool(q.Capped),
		})
	}
	table.Render()
}

var commandFee = &cli.Command{
	Name:      "fee",
	Usage:     "quote the transfer fee for amounts",
	ArgsUsage: "<amount> [ <amount> ... ]",
	Description: `
Compute the fee a transfer-with-fee proof commits to: ceil(amount * rate /
10000), capped at --max. Delta is the rounding remainder the percentage proof
covers; it is claimed as zero when the cap applies.
`,
	Flags: []cli.Flag{feeRateFlag, feeMaxFlag, jsonFlag},
	Action: func(ctx *cli.Context) error {
		rate := ctx.Uint(feeRateFlag.Name)
		if rate > ctoken.MaxFeeBasisPoints {
			utils.Fatalf("Fee rate %d exceeds %d basis points", rate, ctoken.MaxFeeBasisPoints)
		}
		var quotes []ctoken.FeeQuote
		for _, amount := range parseAmounts(ctx) {
			q, err := ctoken.CalculateFee(amount, uint16(rate), ctx.Uint64(feeMaxFlag.Name))
			if err != nil {
				utils.Fatalf("Fee for %d: %v", amount, err)
			}
			quotes = append(quotes, q)
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(ctx, quotes)
			return nil
		}
		writeFeeTable(ctx.App.Writer, quotes)
		return nil
	},
}

func writeSplitTable(w io.Writer, split ctoken.SplitConfig, amounts []ctoken.SplitAmount, raw []uint64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Amount", fmt.Sprintf("Lo (%d bits)", split.LoBits), fmt.Sprintf("Hi (%d bits)", split.HiBits)})
	for i, s := range amounts {
		table.Append([]string{
			strconv.FormatUint(raw[i], 10),
			strconv.FormatUint(s.Lo, 10),
			strconv.FormatUint(s.Hi, 10),
		})
	}
	table.SetFooter([]string{"Range padding", strconv.FormatUint(uint64(ctoken.RangePadding(ctoken.RemainingBalanceBits, split.LoBits, split.HiBits)), 10), "bits"})
	table.Render()
}

var commandSplit = &cli.Command{
	Name:      "split",
	Usage:     "split amounts into the halves proofs encrypt",
	ArgsUsage: "<amount> [ <amount> ... ]",
	Flags:     []cli.Flag{mintBurnFlag, jsonFlag},
	Action: func(ctx *cli.Context) error {
		cfg := makeConfig(ctx)
		split := cfg.Ledger.Transfer
		if ctx.Bool(mintBurnFlag.Name) {
			split = cfg.Ledger.MintBurn
		}
		raw := parseAmounts(ctx)
		amounts := make([]ctoken.SplitAmount, len(raw))
		for i, amount := range raw {
			s, err := split.Split(amount)
			if err != nil {
				utils.Fatalf("Split %d: %v", amount, err)
			}
			amounts[i] = s
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(ctx, amounts)
			return nil
		}
		writeSplitTable(ctx.App.Writer, split, amounts, raw)
		return nil
	},
}
