package ledger

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/ctoken/core/ctoken"
)

func TestOperationCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))

	applied := operations.WithLabelValues("initialize_mint", "applied")
	rejected := operations.WithLabelValues("initialize_mint", "rejected")
	a0, r0 := testutil.ToFloat64(applied), testutil.ToFloat64(rejected)

	f := newFixture(t, MintConfig{})
	require.ErrorIs(t, f.ledger.InitializeMint(testMint, MintConfig{SupplyPubkey: ctoken.PubkeyFrom(f.supply.Public)}), ErrMintExists)

	require.Equal(t, a0+1, testutil.ToFloat64(applied))
	require.Equal(t, r0+1, testutil.ToFloat64(rejected))
	n, err := testutil.GatherAndCount(reg, "ctoken_ledger_operations_total")
	require.NoError(t, err)
	require.Positive(t, n)
}
