package flags

import "github.com/urfave/cli/v2"

const (
	KeyCategory     = "KEYS"
	AmountCategory  = "AMOUNTS AND FEES"
	LedgerCategory  = "LEDGER DATABASE"
	TrackerCategory = "BALANCE TRACKER"
	LoggingCategory = "LOGGING AND DEBUGGING"
	MiscCategory    = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
