package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/ctoken/cmd/utils"
	"github.com/tos-network/ctoken/core/ledger"
)

var commandDumpConfig = &cli.Command{
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[ <file> ]",
	Description: `The dumpconfig command shows configuration values.`,
	Action: func(ctx *cli.Context) error {
		cfg := makeConfig(ctx)
		out, err := tomlSettings.Marshal(&cfg)
		if err != nil {
			return err
		}
		dump := ctx.App.Writer
		if ctx.NArg() > 0 {
			f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			dump = f
		}
		_, err = dump.Write(out)
		return err
	},
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type decryptConfig struct {
	// MaxAmount bounds the discrete log search of ciphertext decryption.
	MaxAmount uint64 `toml:",omitempty"`
}

type ctkeyConfig struct {
	Ledger  ledger.Config
	Decrypt decryptConfig
}

var defaultConfig = ctkeyConfig{
	Ledger:  ledger.DefaultConfig,
	Decrypt: decryptConfig{MaxAmount: 1_000_000_000},
}

func loadConfig(file string, cfg *ctkeyConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, over the defaults.
func makeConfig(ctx *cli.Context) ctkeyConfig {
	cfg := defaultConfig
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	if err := cfg.Ledger.Validate(); err != nil {
		utils.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
