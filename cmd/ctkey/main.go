package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/internal/flags"
)

const (
	defaultKeyfileName = "keyfile.json"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a confidential token key and amount tool")
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.VerbosityFlag,
		utils.LogNoColorFlag,
	}
	app.Commands = []*cli.Command{
		commandGenerate,
		commandInspect,
		commandFee,
		commandSplit,
		commandDecrypt,
		commandAccount,
		commandDumpConfig,
	}
	app.Before = func(ctx *cli.Context) error {
		utils.SetupLogging(ctx)
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
