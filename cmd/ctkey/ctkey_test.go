package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/ledger"
	"github.com/tos-network/ctoken/ctdb/leveldb"
	"github.com/tos-network/ctoken/internal/balancetracker"
)

// runCtkey runs the app in-process and returns what it printed.
func runCtkey(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	require.NoError(t, app.Run(append([]string{"ctkey", "--verbosity", "0"}, args...)))
	return out.String()
}

func TestKeyFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", defaultKeyfileName)
	keys, err := newAccountKeys()
	require.NoError(t, err)
	require.NoError(t, writeKeyFile(path, keys.file))
	require.Error(t, writeKeyFile(path, keys.file), "overwrote an existing keyfile")

	loaded, err := loadKeyFile(path)
	require.NoError(t, err)
	require.Equal(t, keys.file.ID, loaded.file.ID)
	require.True(t, keys.keypair.Public.Equal(loaded.keypair.Public))
	require.Equal(t, *keys.aeKey, *loaded.aeKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestKeyFilePubkeyMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), defaultKeyfileName)
	a, err := newAccountKeys()
	require.NoError(t, err)
	b, err := newAccountKeys()
	require.NoError(t, err)
	a.file.Pubkey = b.file.Pubkey
	require.NoError(t, writeKeyFile(path, a.file))
	_, err = loadKeyFile(path)
	require.Error(t, err)
}

func TestGenerateInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), defaultKeyfileName)
	var generated outputKey
	require.NoError(t, json.Unmarshal([]byte(runCtkey(t, "generate", "--json", path)), &generated))
	require.Empty(t, generated.Secret)

	var inspected outputKey
	require.NoError(t, json.Unmarshal([]byte(runCtkey(t, "inspect", "--json", "--private", path)), &inspected))
	require.Equal(t, generated.Pubkey, inspected.Pubkey)
	require.NotEmpty(t, inspected.Secret)
	require.NotEmpty(t, inspected.AeKey)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctkey.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[Ledger]
MaximumPendingCredits = 16

[Ledger.MintBurn]
LoBits = 16
HiBits = 32

[Decrypt]
MaxAmount = 5000
`), 0644))

	cfg := defaultConfig
	require.NoError(t, loadConfig(path, &cfg))
	require.Equal(t, uint64(16), cfg.Ledger.MaximumPendingCredits)
	require.Equal(t, ctoken.SplitConfig{LoBits: 16, HiBits: 32}, cfg.Ledger.MintBurn)
	require.Equal(t, ctoken.TransferSplit, cfg.Ledger.Transfer)
	require.Equal(t, uint64(5000), cfg.Decrypt.MaxAmount)

	require.NoError(t, os.WriteFile(path, []byte("[Ledger]\nUnknown = 1\n"), 0644))
	cfg = defaultConfig
	require.Error(t, loadConfig(path, &cfg))
}

func TestDumpConfig(t *testing.T) {
	out := runCtkey(t, "dumpconfig")
	var cfg ctkeyConfig
	require.NoError(t, tomlSettings.NewDecoder(bytes.NewReader([]byte(out))).Decode(&cfg))
	require.Equal(t, defaultConfig, cfg)
}

func TestSplitCommand(t *testing.T) {
	var amounts []ctoken.SplitAmount
	require.NoError(t, json.Unmarshal([]byte(runCtkey(t, "split", "--json", "70000,5")), &amounts))
	require.Len(t, amounts, 2)
	require.Equal(t, uint64(4464), amounts[0].Lo)
	require.Equal(t, uint64(1), amounts[0].Hi)
	require.Equal(t, uint64(5), amounts[1].Lo)

	table := runCtkey(t, "split", "--mint-burn", "70000")
	require.Contains(t, table, "4464")
	require.Contains(t, table, "48 BITS")
}

func TestFeeCommand(t *testing.T) {
	var quotes []ctoken.FeeQuote
	require.NoError(t, json.Unmarshal([]byte(runCtkey(t, "fee", "--rate", "100", "--max", "50", "--json", "1000", "65540")), &quotes))
	require.Len(t, quotes, 2)
	require.Equal(t, uint64(10), quotes[0].Fee)
	require.False(t, quotes[0].Capped)
	require.Equal(t, uint64(50), quotes[1].Fee)
	require.True(t, quotes[1].Capped)
	for _, q := range quotes {
		require.Equal(t, q.Amount, q.Fee+q.Net)
	}
}

func TestAccountCommand(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, defaultKeyfileName)
	keys, err := newAccountKeys()
	require.NoError(t, err)
	require.NoError(t, writeKeyFile(keyPath, keys.file))

	mint, owner := common.HexToAddress("0xc0ffee"), common.HexToAddress("0xa11ce")
	dataDir := filepath.Join(dir, "ledger")
	db, err := leveldb.New(dataDir, 16, 16, false)
	require.NoError(t, err)
	l, err := ledger.New(db, ledger.DefaultConfig)
	require.NoError(t, err)
	require.NoError(t, l.InitializeMint(mint, ledger.MintConfig{}))

	proof, err := ctoken.AssembleConfigureAccount(keys.keypair, keys.aeKey)
	require.NoError(t, err)
	set := ctoken.NewInstructionSet()
	locs, err := set.Append(proof.Proofs()...)
	require.NoError(t, err)
	require.NoError(t, l.ConfigureAccount(ledger.ConfigureAccountOp{
		Mint:                   mint,
		Owner:                  owner,
		DecryptableZeroBalance: proof.DecryptableZeroBalance,
		PubkeyValidity:         locs[0],
	}, set.Proofs()))
	require.NoError(t, l.Deposit(mint, owner, 25))
	require.NoError(t, db.Close())

	trackPath := filepath.Join(dir, "tracker.json")
	var st balancetracker.State
	out := runCtkey(t, "account",
		"--datadir", dataDir, "--mint", mint.Hex(), "--owner", owner.Hex(),
		"--track", trackPath, "--sequence", "1", "--json", keyPath)
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, uint64(0), st.Available)
	require.Equal(t, uint64(25), st.Pending)

	saved, err := balancetracker.Load(trackPath)
	require.NoError(t, err)
	require.Equal(t, uint64(1), saved.Sequence)
	require.Equal(t, st.Owner, saved.Owner)
}
