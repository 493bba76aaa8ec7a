package ledger

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
	"github.com/tos-network/ctoken/ctdb/leveldb"
)

const testMaxBalance = 1 << 24

var testMint = common.HexToAddress("0xc0ffee")

type testUser struct {
	addr common.Address
	kp   *elgamal.Keypair
	key  *authenc.AeKey
}

type fixture struct {
	t      *testing.T
	ledger *Ledger

	supply    *elgamal.Keypair
	supplyKey *authenc.AeKey
}

func newFixture(t *testing.T, cfg MintConfig) *fixture {
	t.Helper()
	db, err := leveldb.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := New(db, DefaultConfig)
	require.NoError(t, err)

	f := &fixture{t: t, ledger: l, supply: newTestKeypair(t), supplyKey: newTestAeKey(t)}
	cfg.SupplyPubkey = ctoken.PubkeyFrom(f.supply.Public)
	cfg.DecryptableSupply = f.mirror(f.supplyKey, 0)
	require.NoError(t, l.InitializeMint(testMint, cfg))
	return f
}

func newTestKeypair(t *testing.T) *elgamal.Keypair {
	kp, err := elgamal.NewKeypair()
	require.NoError(t, err)
	return kp
}

func newTestAeKey(t *testing.T) *authenc.AeKey {
	key, err := authenc.NewAeKey()
	require.NoError(t, err)
	return key
}

func (f *fixture) mirror(key *authenc.AeKey, amount uint64) authenc.AeCiphertext {
	m, err := key.Encrypt(amount)
	require.NoError(f.t, err)
	return m
}

// bundle places proofs inline in order and returns their locations.
func (f *fixture) bundle(proofs ...zkproofs.ProofData) (Bundle, []ctoken.ProofLocation) {
	set := ctoken.NewInstructionSet()
	locs, err := set.Append(proofs...)
	require.NoError(f.t, err)
	return set.Proofs(), locs
}

func (f *fixture) decrypt(kp *elgamal.Keypair, ct ctoken.Ciphertext) uint64 {
	decoded, err := ct.Decode()
	require.NoError(f.t, err)
	amount, ok := kp.Secret.Decrypt(decoded, testMaxBalance)
	require.True(f.t, ok, "ciphertext does not decrypt below %d", testMaxBalance)
	return amount
}

func (f *fixture) account(u *testUser) *ctoken.AccountState {
	s, err := f.ledger.ReadAccountState(testMint, u.addr)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) mintState() *ctoken.MintState {
	m, err := f.ledger.ReadMintState(testMint)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) newUser(hex string) *testUser {
	u := &testUser{addr: common.HexToAddress(hex), kp: newTestKeypair(f.t), key: newTestAeKey(f.t)}
	out, err := ctoken.AssembleConfigureAccount(u.kp, u.key)
	require.NoError(f.t, err)
	inline, locs := f.bundle(out.Proofs()...)
	require.NoError(f.t, f.ledger.ConfigureAccount(ConfigureAccountOp{
		Mint:                   testMint,
		Owner:                  u.addr,
		DecryptableZeroBalance: out.DecryptableZeroBalance,
		PubkeyValidity:         locs[0],
	}, inline))
	return u
}

func (f *fixture) applyPending(u *testUser) {
	info := ctoken.NewApplyPendingInfo(f.account(u))
	mirror, err := info.NewDecryptableAvailable(u.kp.Secret, u.key)
	require.NoError(f.t, err)
	require.NoError(f.t, f.ledger.ApplyPending(testMint, ApplyPendingOp{
		Owner:                   u.addr,
		NewDecryptableAvailable: mirror,
		ExpectedPendingCredits:  info.PendingCreditCounter,
	}))
}

func (f *fixture) fund(u *testUser, amount uint64) {
	require.NoError(f.t, f.ledger.Deposit(testMint, u.addr, amount))
	f.applyPending(u)
}

func (f *fixture) mintTo(u *testUser, amount uint64) {
	m := f.mintState()
	a, err := ctoken.NewMintBurnAssembler(ctoken.DefaultMintBurnConfig())
	require.NoError(f.t, err)
	out, err := a.AssembleMint(ctoken.MintArgs{
		Supply:            m.ConfidentialSupply,
		DecryptableSupply: m.DecryptableSupply,
		Amount:            amount,
		SupplyKeypair:     f.supply,
		SupplyAeKey:       f.supplyKey,
		DestinationPubkey: u.kp.Public,
	})
	require.NoError(f.t, err)
	inline, locs := f.bundle(out.Proofs()...)
	require.NoError(f.t, f.ledger.Mint(MintOp{
		Mint:                 testMint,
		Destination:          u.addr,
		NewDecryptableSupply: out.NewDecryptableSupply,
		Equality:             locs[0],
		Validity:             locs[1],
		Range:                locs[2],
	}, inline))
}

func (f *fixture) burn(u *testUser, amount uint64) error {
	s := f.account(u)
	a, err := ctoken.NewMintBurnAssembler(ctoken.DefaultMintBurnConfig())
	require.NoError(f.t, err)
	out, err := a.AssembleBurn(ctoken.BurnArgs{
		Available:            s.Available,
		DecryptableAvailable: s.DecryptableAvailable,
		Amount:               amount,
		SourceKeypair:        u.kp,
		AeKey:                u.key,
		SupplyPubkey:         f.supply.Public,
	})
	require.NoError(f.t, err)
	inline, locs := f.bundle(out.Proofs()...)
	return f.ledger.Burn(BurnOp{
		Mint:                    testMint,
		Owner:                   u.addr,
		NewDecryptableAvailable: out.NewDecryptableAvailable,
		Equality:                locs[0],
		Validity:                locs[1],
		Range:                   locs[2],
	}, inline)
}

func TestMintBurnLifecycle(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")

	f.mintTo(alice, 120)
	m := f.mintState()
	require.Equal(t, uint64(120), f.decrypt(f.supply, m.ConfidentialSupply))
	pending, err := f.account(alice).PendingBalance(alice.kp.Secret)
	require.NoError(t, err)
	require.Equal(t, uint64(120), pending)

	f.applyPending(alice)
	require.Equal(t, uint64(120), f.decrypt(alice.kp, f.account(alice).Available))

	require.NoError(t, f.burn(alice, 120))
	s := f.account(alice)
	require.Equal(t, uint64(0), f.decrypt(alice.kp, s.Available), spew.Sdump(s))

	// The burn is aggregated, not yet applied to the supply.
	m = f.mintState()
	require.Equal(t, uint64(120), f.decrypt(f.supply, m.PendingBurn))
	require.Equal(t, uint64(120), f.decrypt(f.supply, m.ConfidentialSupply))

	require.NoError(t, f.ledger.ApplyPendingBurn(testMint, f.mirror(f.supplyKey, 0)))
	m = f.mintState()
	require.True(t, m.PendingBurn.IsZero())
	require.Equal(t, uint64(0), f.decrypt(f.supply, m.ConfidentialSupply), spew.Sdump(m))
}

func TestBurnInsufficientFunds(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	f.mintTo(alice, 10)
	f.applyPending(alice)

	s := f.account(alice)
	a, err := ctoken.NewMintBurnAssembler(ctoken.DefaultMintBurnConfig())
	require.NoError(t, err)
	_, err = a.AssembleBurn(ctoken.BurnArgs{
		Available:            s.Available,
		DecryptableAvailable: s.DecryptableAvailable,
		Amount:               11,
		SourceKeypair:        alice.kp,
		AeKey:                alice.key,
		SupplyPubkey:         f.supply.Public,
	})
	require.ErrorIs(t, err, ctoken.ErrInsufficientFunds)
}

func TestRotateSupplyGuard(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	f.mintTo(alice, 120)
	f.applyPending(alice)
	require.NoError(t, f.burn(alice, 50))

	next, nextKey := newTestKeypair(t), newTestAeKey(t)
	rotate := func() error {
		m := f.mintState()
		a, err := ctoken.NewMintBurnAssembler(ctoken.DefaultMintBurnConfig())
		require.NoError(t, err)
		out, err := a.AssembleRotateSupply(ctoken.RotateSupplyArgs{
			Supply:            m.ConfidentialSupply,
			DecryptableSupply: m.DecryptableSupply,
			CurrentKeypair:    f.supply,
			NewPubkey:         next.Public,
			SupplyAeKey:       f.supplyKey,
		})
		require.NoError(t, err)
		inline, locs := f.bundle(out.Proofs()...)
		mirror, err := nextKey.Encrypt(f.decrypt(f.supply, m.ConfidentialSupply) - f.decrypt(f.supply, m.PendingBurn))
		require.NoError(t, err)
		return f.ledger.RotateSupply(RotateSupplyOp{Mint: testMint, NewDecryptableSupply: mirror, Equality: locs[0]}, inline)
	}

	// The pending burn is encrypted under the current key.
	require.ErrorIs(t, rotate(), ctoken.ErrPendingBalanceNonZero)

	require.NoError(t, f.ledger.ApplyPendingBurn(testMint, f.mirror(f.supplyKey, 70)))
	require.NoError(t, rotate())

	m := f.mintState()
	require.Equal(t, ctoken.PubkeyFrom(next.Public), m.SupplyPubkey)
	require.Equal(t, uint64(70), f.decrypt(next, m.ConfidentialSupply))
	amount, err := nextKey.Decrypt(m.DecryptableSupply)
	require.NoError(t, err)
	require.Equal(t, uint64(70), amount)
}

func (f *fixture) transferBundle(from, to *testUser, amount uint64) (Bundle, TransferOp) {
	s := f.account(from)
	a, err := ctoken.NewTransferAssembler(ctoken.DefaultTransferConfig())
	require.NoError(f.t, err)
	out, err := a.Assemble(ctoken.TransferArgs{
		Available:            s.Available,
		DecryptableAvailable: s.DecryptableAvailable,
		Amount:               amount,
		SourceKeypair:        from.kp,
		AeKey:                from.key,
		DestinationPubkey:    to.kp.Public,
	})
	require.NoError(f.t, err)
	inline, locs := f.bundle(out.Proofs()...)
	return inline, TransferOp{
		Mint:                    testMint,
		Source:                  from.addr,
		Destination:             to.addr,
		NewDecryptableAvailable: out.NewDecryptableAvailable,
		Equality:                locs[0],
		Validity:                locs[1],
		Range:                   locs[2],
	}
}

func TestTransfer(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice, bob := f.newUser("0xa11ce"), f.newUser("0xb0b")
	f.fund(alice, 100)

	inline, op := f.transferBundle(alice, bob, 30)
	stale, staleOp := f.transferBundle(alice, bob, 30)

	require.NoError(t, f.ledger.Transfer(op, inline))
	require.Equal(t, uint64(70), f.decrypt(alice.kp, f.account(alice).Available))
	pending, err := f.account(bob).PendingBalance(bob.kp.Secret)
	require.NoError(t, err)
	require.Equal(t, uint64(30), pending)

	// Built against the balance before the first transfer.
	require.ErrorIs(t, f.ledger.Transfer(staleOp, stale), ctoken.ErrCiphertextMismatch)

	// Proofs for a different account do not apply.
	carol := f.newUser("0xca401")
	inline, op = f.transferBundle(alice, bob, 10)
	op.Destination = carol.addr
	require.ErrorIs(t, f.ledger.Transfer(op, inline), ctoken.ErrElGamalPubkeyMismatch)
}

func TestSelfTransfer(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	f.fund(alice, 100)

	inline, op := f.transferBundle(alice, alice, 0)
	require.NoError(t, f.ledger.Transfer(op, inline))
	s := f.account(alice)
	require.Equal(t, uint64(100), f.decrypt(alice.kp, s.Available))
	require.Equal(t, uint64(1), s.PendingCreditCounter)
}

func TestTransferWithFee(t *testing.T) {
	withheld := newTestKeypair(t)
	f := newFixture(t, MintConfig{
		FeeBasisPoints:          100,
		MaximumFee:              50,
		WithheldAuthorityPubkey: ctoken.PubkeyFrom(withheld.Public),
	})
	alice, bob := f.newUser("0xa11ce"), f.newUser("0xb0b")
	f.fund(alice, 100_000)

	inline, op := f.transferBundle(alice, bob, 10)
	require.ErrorIs(t, f.ledger.Transfer(op, inline), ErrFeeRequired)

	// 65540 splits into lo 4 and hi 1 and pays the capped fee of 50.
	const amount = 65540
	s := f.account(alice)
	a, err := ctoken.NewTransferWithFeeAssembler(ctoken.DefaultTransferConfig())
	require.NoError(t, err)
	out, err := a.Assemble(ctoken.TransferWithFeeArgs{
		Available:               s.Available,
		DecryptableAvailable:    s.DecryptableAvailable,
		Amount:                  amount,
		SourceKeypair:           alice.kp,
		AeKey:                   alice.key,
		DestinationPubkey:       bob.kp.Public,
		WithheldAuthorityPubkey: withheld.Public,
		FeeBasisPoints:          100,
		MaximumFee:              50,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(50), out.Quote.Fee)
	inline, locs := f.bundle(out.Proofs()...)
	require.NoError(t, f.ledger.TransferWithFee(TransferWithFeeOp{
		TransferOp: TransferOp{
			Mint:                    testMint,
			Source:                  alice.addr,
			Destination:             bob.addr,
			NewDecryptableAvailable: out.NewDecryptableAvailable,
			Equality:                locs[0],
			Validity:                locs[1],
			Range:                   locs[4],
		},
		Percentage:  locs[2],
		FeeValidity: locs[3],
	}, inline))

	require.Equal(t, uint64(100_000-amount), f.decrypt(alice.kp, f.account(alice).Available))
	b := f.account(bob)
	pending, err := b.PendingBalance(bob.kp.Secret)
	require.NoError(t, err, spew.Sdump(b))
	require.Equal(t, uint64(amount-50), pending)
	require.Equal(t, uint64(50), f.decrypt(withheld, b.WithheldFee))

	f.applyPending(bob)
	require.Equal(t, uint64(amount-50), f.decrypt(bob.kp, f.account(bob).Available))

	// Harvest the fee into the mint and pay it out to alice.
	require.NoError(t, f.ledger.HarvestWithheldToMint(testMint, bob.addr, bob.addr))
	require.True(t, f.account(bob).WithheldFee.IsZero())
	m := f.mintState()
	require.Equal(t, uint64(50), f.decrypt(withheld, m.WithheldFee))

	ww, err := ctoken.AssembleWithdrawWithheld(ctoken.WithdrawWithheldArgs{
		Withheld:          m.WithheldFee,
		AuthorityKeypair:  withheld,
		DestinationPubkey: alice.kp.Public,
	})
	require.NoError(t, err)
	inline, locs = f.bundle(ww.Proofs()...)
	require.NoError(t, f.ledger.WithdrawWithheldFromMint(WithdrawWithheldOp{
		Mint: testMint, Destination: alice.addr, Equality: locs[0],
	}, inline))
	require.True(t, f.mintState().WithheldFee.IsZero())
	pending, err = f.account(alice).PendingBalance(alice.kp.Secret)
	require.NoError(t, err)
	require.Equal(t, uint64(50), pending)
}

func (f *fixture) withdrawProof(u *testUser, amount uint64) *ctoken.WithdrawProofData {
	s := f.account(u)
	out, err := ctoken.NewWithdrawAssembler(ctoken.DefaultTransferConfig()).Assemble(ctoken.WithdrawArgs{
		Available:            s.Available,
		DecryptableAvailable: s.DecryptableAvailable,
		Amount:               amount,
		Keypair:              u.kp,
		AeKey:                u.key,
	})
	require.NoError(f.t, err)
	return out
}

func TestContextRecordLocation(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	f.fund(alice, 40)

	out := f.withdrawProof(alice, 15)
	id, err := f.ledger.CreateContextRecord(out.Equality, alice.addr)
	require.NoError(t, err)

	inline, locs := f.bundle(out.Range)
	op := WithdrawOp{
		Mint:                    testMint,
		Owner:                   alice.addr,
		Amount:                  15,
		NewDecryptableAvailable: out.NewDecryptableAvailable,
		Equality:                ctoken.ContextStateAccount(id),
		Range:                   locs[0],
	}
	// A record of the wrong type is refused.
	wrong := op
	wrong.Range = ctoken.ContextStateAccount(id)
	require.ErrorIs(t, f.ledger.Withdraw(wrong, nil), ctoken.ErrInvalidProofType)

	require.NoError(t, f.ledger.Withdraw(op, inline))
	require.Equal(t, uint64(25), f.decrypt(alice.kp, f.account(alice).Available))

	require.ErrorIs(t, f.ledger.CloseContextRecord(id, common.HexToAddress("0xbad")), ErrContextRecordAuthority)
	require.NoError(t, f.ledger.CloseContextRecord(id, alice.addr))
	_, err = f.ledger.ReadContextRecord(id)
	require.ErrorIs(t, err, ctoken.ErrContextRecordNotFound)
}

func TestApplyPendingDuplicate(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	op := ApplyPendingOp{Owner: alice.addr}
	require.ErrorIs(t, f.ledger.ApplyPending(testMint, op, op), ErrDuplicateAccount)
}

func TestConfigureAccountTwice(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")

	out, err := ctoken.AssembleConfigureAccount(alice.kp, alice.key)
	require.NoError(t, err)
	inline, locs := f.bundle(out.Proofs()...)
	err = f.ledger.ConfigureAccount(ConfigureAccountOp{
		Mint: testMint, Owner: alice.addr, PubkeyValidity: locs[0],
	}, inline)
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestEmptyAndCloseAccount(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	f.fund(alice, 10)

	out := f.withdrawProof(alice, 10)
	inline, locs := f.bundle(out.Proofs()...)
	require.NoError(t, f.ledger.Withdraw(WithdrawOp{
		Mint:                    testMint,
		Owner:                   alice.addr,
		Amount:                  10,
		NewDecryptableAvailable: out.NewDecryptableAvailable,
		Equality:                locs[0],
		Range:                   locs[1],
	}, inline))

	// Zero, but not the zero ciphertext.
	require.ErrorIs(t, f.ledger.CloseAccount(testMint, alice.addr), ctoken.ErrAccountHasBalance)

	empty, err := ctoken.AssembleEmptyAccount(f.account(alice).Available, alice.kp)
	require.NoError(t, err)
	inline, locs = f.bundle(empty.Proofs()...)
	require.NoError(t, f.ledger.EmptyAccount(EmptyAccountOp{Mint: testMint, Owner: alice.addr, ZeroBalance: locs[0]}, inline))
	require.NoError(t, f.ledger.CloseAccount(testMint, alice.addr))

	_, err = f.ledger.ReadAccountState(testMint, alice.addr)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCloseMint(t *testing.T) {
	f := newFixture(t, MintConfig{})
	alice := f.newUser("0xa11ce")
	require.ErrorIs(t, f.ledger.CloseMint(testMint), ErrMintHasAccounts)

	require.NoError(t, f.ledger.CloseAccount(testMint, alice.addr))
	require.NoError(t, f.ledger.CloseMint(testMint))
	_, err := f.ledger.ReadMintState(testMint)
	require.ErrorIs(t, err, ErrMintNotFound)
}

func TestInitializeMintValidation(t *testing.T) {
	f := newFixture(t, MintConfig{})
	require.ErrorIs(t, f.ledger.InitializeMint(testMint, MintConfig{}), ErrMintExists)
	err := f.ledger.InitializeMint(common.HexToAddress("0x2"), MintConfig{FeeBasisPoints: 10_001})
	require.ErrorIs(t, err, ctoken.ErrFeeCalculation)
}
