package instructions

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/coder"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func testPoolKeys(mint solana.PublicKey) *types.PoolKeys {
	return &types.PoolKeys{
		ID:               newKey(),
		BaseMint:         mint,
		QuoteMint:        config.WRAPPED_SOL,
		BaseDecimals:     6,
		QuoteDecimals:    9,
		Version:          4,
		ProgramID:        config.RAYDIUM_AMM_V4,
		Authority:        config.RAYDIUM_AUTHORITY,
		OpenOrders:       newKey(),
		TargetOrders:     newKey(),
		BaseVault:        newKey(),
		QuoteVault:       newKey(),
		MarketProgramID:  config.OPENBOOK_ID,
		MarketID:         newKey(),
		MarketAuthority:  newKey(),
		MarketBaseVault:  newKey(),
		MarketQuoteVault: newKey(),
		MarketBids:       newKey(),
		MarketAsks:       newKey(),
		MarketEventQueue: newKey(),
	}
}

// kinds names each instruction of a plan so orderings can be compared.
func kinds(t *testing.T, plan *Plan) []string {
	t.Helper()

	out := make([]string, 0, len(plan.Instructions))
	for _, ins := range plan.Instructions {
		data, err := ins.Data()
		require.NoError(t, err)

		switch program := ins.ProgramID(); {
		case program.Equals(system.ProgramID):
			out = append(out, "create-account")
		case program.Equals(associatedtokenaccount.ProgramID):
			out = append(out, "create-ata")
		case program.Equals(config.RAYDIUM_AMM_V4):
			out = append(out, "swap")
		case program.Equals(computebudget.ProgramID):
			compute, err := coder.NewRaydiumAmmInstructionCoder().DecodeCompute(data)
			require.NoError(t, err)
			if compute.Instruction == coder.COMPUTE_UNIT_LIMIT_INSTRUCTION {
				out = append(out, "compute-limit")
			} else {
				out = append(out, "compute-price")
			}
		case program.Equals(solana.TokenProgramID):
			require.NotEmpty(t, data)
			switch data[0] {
			case 1:
				out = append(out, "init-account")
			case 8:
				out = append(out, "burn")
			case 9:
				out = append(out, "close-account")
			default:
				t.Fatalf("unexpected token instruction %d", data[0])
			}
		default:
			t.Fatalf("unexpected program %s", program)
		}
	}
	return out
}

func instructionOf(t *testing.T, plan *Plan, kind string) solana.Instruction {
	t.Helper()

	for i, k := range kinds(t, plan) {
		if k == kind {
			return plan.Instructions[i]
		}
	}
	t.Fatalf("plan has no %s instruction", kind)
	return nil
}

func TestSwapInstruction(t *testing.T) {
	pKey := testPoolKeys(newKey())
	in, out, owner := newKey(), newKey(), newKey()

	ins, err := MakeRaydiumSwapFixedInInstruction(&LiquiditySwapFixedInInstructionParams{
		InAmount:         1_000_000,
		MinimumOutAmount: 0,
		PoolKeys:         pKey,
		TokenAccountIn:   in,
		TokenAccountOut:  out,
		Owner:            owner,
	})
	require.NoError(t, err)

	expected := []struct {
		key      solana.PublicKey
		writable bool
		signer   bool
	}{
		{solana.TokenProgramID, false, false},
		{pKey.ID, true, false},
		{pKey.Authority, false, false},
		{pKey.OpenOrders, true, false},
		{pKey.TargetOrders, true, false},
		{pKey.BaseVault, true, false},
		{pKey.QuoteVault, true, false},
		{pKey.MarketProgramID, false, false},
		{pKey.MarketID, true, false},
		{pKey.MarketBids, true, false},
		{pKey.MarketAsks, true, false},
		{pKey.MarketEventQueue, true, false},
		{pKey.MarketBaseVault, true, false},
		{pKey.MarketQuoteVault, true, false},
		{pKey.MarketAuthority, false, false},
		{in, true, false},
		{out, true, false},
		{owner, false, true},
	}

	accounts := ins.Accounts()
	require.Len(t, accounts, SWAP_ACCOUNTS)
	for i, want := range expected {
		assert.Equal(t, want.key, accounts[i].PublicKey, "account %d", i)
		assert.Equal(t, want.writable, accounts[i].IsWritable, "account %d writable", i)
		assert.Equal(t, want.signer, accounts[i].IsSigner, "account %d signer", i)
	}

	data, err := ins.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, byte(coder.SWAP_BASE_IN_INSTRUCTION), data[0])

	decoded, err := coder.NewRaydiumAmmInstructionCoder().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, coder.SwapBaseIn{AmountIn: 1_000_000, MinimumAmountOut: 0}, decoded)
}

func TestSwapInstructionIncompleteKeys(t *testing.T) {
	pKey := testPoolKeys(newKey())
	pKey.MarketAuthority = solana.PublicKey{}

	_, err := MakeRaydiumSwapFixedInInstruction(&LiquiditySwapFixedInInstructionParams{
		InAmount:        1,
		PoolKeys:        pKey,
		TokenAccountIn:  newKey(),
		TokenAccountOut: newKey(),
		Owner:           newKey(),
	})
	assert.ErrorIs(t, err, types.ErrIncompletePoolKeys)
	assert.ErrorContains(t, err, "marketAuthority")

	_, err = MakeRaydiumSwapFixedInInstruction(&LiquiditySwapFixedInInstructionParams{InAmount: 1})
	assert.ErrorIs(t, err, types.ErrIncompletePoolKeys)
}

func TestBuyPlanOrder(t *testing.T) {
	mint := newKey()
	owner := newKey()

	plan, err := BuildBuyPlan(BuyParams{
		PoolKeys:      testPoolKeys(mint),
		Owner:         owner,
		AmountIn:      500_000_000,
		RentExemption: 2_039_280,
		Compute:       ComputeUnit{Units: 200_000, MicroLamports: 10_000},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create-account", "init-account", "create-ata", "swap", "close-account", "compute-limit", "compute-price",
	}, kinds(t, plan))

	require.Len(t, plan.Signers, 1)
	wsolAccount := plan.Signers[0].PublicKey()

	create := plan.Instructions[0]
	data, err := create.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(2_039_280+500_000_000), binary.LittleEndian.Uint64(data[4:12]))
	assert.Equal(t, uint64(config.TA_SIZE), binary.LittleEndian.Uint64(data[12:20]))
	assert.Equal(t, wsolAccount, create.Accounts()[1].PublicKey)

	destination, err := GetAssociatedTokenAccount(owner, mint)
	require.NoError(t, err)

	swap := plan.Instructions[3].Accounts()
	assert.Equal(t, wsolAccount, swap[15].PublicKey)
	assert.Equal(t, destination, swap[16].PublicKey)

	closeAccounts := plan.Instructions[4].Accounts()
	assert.Equal(t, wsolAccount, closeAccounts[0].PublicKey)
	assert.Equal(t, owner, closeAccounts[1].PublicKey)
}

func TestBuyPlanExistingDestinationNoCompute(t *testing.T) {
	plan, err := BuildBuyPlan(BuyParams{
		PoolKeys:          testPoolKeys(newKey()),
		Owner:             newKey(),
		AmountIn:          1,
		DestinationExists: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"create-account", "init-account", "swap", "close-account"}, kinds(t, plan))
}

func TestBuyPlanComputePriceOnly(t *testing.T) {
	plan, err := BuildBuyPlan(BuyParams{
		PoolKeys:          testPoolKeys(newKey()),
		Owner:             newKey(),
		AmountIn:          1,
		DestinationExists: true,
		Compute:           ComputeUnit{MicroLamports: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"create-account", "init-account", "swap", "close-account", "compute-price"}, kinds(t, plan))
}

func TestBuyPlanRejectsZero(t *testing.T) {
	_, err := BuildBuyPlan(BuyParams{PoolKeys: testPoolKeys(newKey()), Owner: newKey()})
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestSellPlanClosesOnFullBalance(t *testing.T) {
	owner := newKey()
	source := newKey()

	plan, err := BuildSellPlan(SellParams{
		PoolKeys:     testPoolKeys(newKey()),
		Owner:        owner,
		TokenAccount: source,
		AmountIn:     1_000,
		Balance:      1_000,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"create-ata", "swap", "close-account"}, kinds(t, plan))
	assert.Empty(t, plan.Signers)

	wsolAccount, err := GetAssociatedTokenAccount(owner, config.WRAPPED_SOL)
	require.NoError(t, err)

	swap := instructionOf(t, plan, "swap").Accounts()
	assert.Equal(t, source, swap[15].PublicKey)
	assert.Equal(t, wsolAccount, swap[16].PublicKey)
	assert.Equal(t, source, instructionOf(t, plan, "close-account").Accounts()[0].PublicKey)
}

func TestSellPlanPartialKeepsAccount(t *testing.T) {
	plan, err := BuildSellPlan(SellParams{
		PoolKeys:          testPoolKeys(newKey()),
		Owner:             newKey(),
		TokenAccount:      newKey(),
		AmountIn:          999,
		Balance:           1_000,
		WsolAccountExists: true,
		Compute:           ComputeUnit{Units: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"swap", "compute-limit"}, kinds(t, plan))
}

func TestSellPlanOverBalance(t *testing.T) {
	plan, err := BuildSellPlan(SellParams{
		PoolKeys:     testPoolKeys(newKey()),
		Owner:        newKey(),
		TokenAccount: newKey(),
		AmountIn:     1_001,
		Balance:      1_000,
	})
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	assert.Nil(t, plan)
}

func TestBurnPlan(t *testing.T) {
	mint := newKey()
	owner := newKey()
	account := newKey()

	plan, err := BuildBurnPlan(BurnParams{Mint: mint, Owner: owner, TokenAccount: account, Amount: 1_000, Balance: 1_000})
	require.NoError(t, err)
	assert.Equal(t, []string{"burn", "close-account"}, kinds(t, plan))

	burn := plan.Instructions[0]
	data, err := burn.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, account, burn.Accounts()[0].PublicKey)
	assert.Equal(t, mint, burn.Accounts()[1].PublicKey)

	plan, err = BuildBurnPlan(BurnParams{Mint: mint, Owner: owner, TokenAccount: account, Amount: 999, Balance: 1_000})
	require.NoError(t, err)
	assert.Equal(t, []string{"burn"}, kinds(t, plan))
}

func TestBurnPlanOverBalance(t *testing.T) {
	plan, err := BuildBurnPlan(BurnParams{Mint: newKey(), Owner: newKey(), TokenAccount: newKey(), Amount: 1_001, Balance: 1_000})
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	assert.Nil(t, plan)
}

func TestClosePlan(t *testing.T) {
	owner := newKey()
	account := newKey()

	plan, err := BuildClosePlan(CloseParams{Owner: owner, TokenAccount: account, Compute: ComputeUnit{Units: 5_000, MicroLamports: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"close-account", "compute-limit", "compute-price"}, kinds(t, plan))

	accounts := plan.Instructions[0].Accounts()
	assert.Equal(t, account, accounts[0].PublicKey)
	assert.Equal(t, owner, accounts[1].PublicKey)
	assert.Equal(t, owner, accounts[2].PublicKey)
}
