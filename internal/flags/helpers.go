package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Version is the release version of the ctoken tools.
const Version = "0.1.0-unstable"

// VersionWithCommit appends the short commit hash and date, when known.
func VersionWithCommit(gitCommit, gitDate string) string {
	v := Version
	if len(gitCommit) >= 8 {
		v += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		v += "-" + gitDate
	}
	return v
}

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	app.Copyright = "Copyright 2024-2026 The ctoken Authors"
	return app
}

// CheckExclusive verifies that at most one of the given flags is set.
func CheckExclusive(ctx *cli.Context, names ...string) error {
	var set []string
	for _, name := range names {
		if ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", set)
	}
	return nil
}
