// Package utils contains internal helper functions for ctoken commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/ctdb/leveldb"
	"github.com/tos-network/ctoken/internal/flags"
)

// These are the command line flags shared by ctoken commands.
var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	LogNoColorFlag = &cli.BoolFlag{
		Name:     "log.nocolor",
		Usage:    "Disable terminal colours in log output",
		Category: flags.LoggingCategory,
	}
	JSONFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "Output JSON instead of human-readable format",
		Category: flags.MiscCategory,
	}

	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Directory of the ledger database",
		Value:    DefaultDataDir(),
		Category: flags.LedgerCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to database caching",
		Value:    64,
		Category: flags.LedgerCategory,
	}
	HandlesFlag = &cli.IntFlag{
		Name:     "handles",
		Usage:    "Number of open file handles the database may use",
		Value:    64,
		Category: flags.LedgerCategory,
	}
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// SetupLogging installs a terminal log handler at the requested verbosity.
// Colour is used only when stderr is a terminal.
func SetupLogging(ctx *cli.Context) {
	useColor := !ctx.Bool(LogNoColorFlag.Name) && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	handler := log.NewTerminalHandlerWithLevel(output, log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)), useColor)
	log.SetDefault(log.NewLogger(handler))
}

// DefaultDataDir is the default ledger database location.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".ctoken", "ledger")
	}
	return ""
}

// MakeDatabase opens the ledger database named by the datadir flag.
func MakeDatabase(ctx *cli.Context, readonly bool) *leveldb.Database {
	dir := ctx.String(DataDirFlag.Name)
	if dir == "" {
		Fatalf("Cannot determine default data directory, please set manually (--%s)", DataDirFlag.Name)
	}
	db, err := leveldb.New(dir, ctx.Int(CacheFlag.Name), ctx.Int(HandlesFlag.Name), readonly)
	if err != nil {
		Fatalf("Could not open database: %v", err)
	}
	return db
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}
