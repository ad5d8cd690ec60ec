package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/liquidity"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

// ComputeUnit holds the optional compute budget directives. A zero value
// leaves the cluster default in place.
type ComputeUnit struct {
	MicroLamports uint64
	Units         uint32
}

// Plan is an ordered instruction list plus the keys, besides the fee payer,
// that must sign the transaction.
type Plan struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey
}

type BuyParams struct {
	PoolKeys          *types.PoolKeys
	Owner             solana.PublicKey
	AmountIn          uint64
	MinAmountOut      uint64
	RentExemption     uint64
	DestinationExists bool
	Compute           ComputeUnit
}

type SellParams struct {
	PoolKeys          *types.PoolKeys
	Owner             solana.PublicKey
	TokenAccount      solana.PublicKey
	AmountIn          uint64
	Balance           uint64
	MinAmountOut      uint64
	WsolAccountExists bool
	Compute           ComputeUnit
}

type BurnParams struct {
	Mint         solana.PublicKey
	Owner        solana.PublicKey
	TokenAccount solana.PublicKey
	Amount       uint64
	Balance      uint64
	Compute      ComputeUnit
}

type CloseParams struct {
	Owner        solana.PublicKey
	TokenAccount solana.PublicKey
	Compute      ComputeUnit
}

// BuildBuyPlan swaps SOL for the pool token through a throwaway WSOL account:
// create and fund it, initialize it, create the destination account when
// missing, swap, then close it to reclaim rent and unswapped SOL.
func BuildBuyPlan(params BuyParams) (*Plan, error) {
	if params.AmountIn == 0 {
		return nil, fmt.Errorf("%w: buy amount is zero", types.ErrInvalidAmount)
	}

	mint, _, err := liquidity.GetMint(params.PoolKeys)
	if err != nil {
		return nil, err
	}

	wsolAccount, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}

	ins, err := createWsolAccountInstructions(params.Owner, wsolAccount.PublicKey(), params.RentExemption+params.AmountIn)
	if err != nil {
		return nil, err
	}

	destination, err := GetAssociatedTokenAccount(params.Owner, mint)
	if err != nil {
		return nil, err
	}

	if !params.DestinationExists {
		createIns, err := associatedtokenaccount.NewCreateInstruction(params.Owner, params.Owner, mint).ValidateAndBuild()
		if err != nil {
			return nil, err
		}
		ins = append(ins, createIns)
	}

	swapIns, err := MakeRaydiumSwapFixedInInstruction(&LiquiditySwapFixedInInstructionParams{
		InAmount:         params.AmountIn,
		MinimumOutAmount: params.MinAmountOut,
		PoolKeys:         params.PoolKeys,
		TokenAccountIn:   wsolAccount.PublicKey(),
		TokenAccountOut:  destination,
		Owner:            params.Owner,
	})
	if err != nil {
		return nil, err
	}
	ins = append(ins, swapIns)

	closeIns, err := closeAccountInstruction(wsolAccount.PublicKey(), params.Owner)
	if err != nil {
		return nil, err
	}
	ins = append(ins, closeIns)

	return &Plan{
		Instructions: appendCompute(ins, params.Compute),
		Signers:      []solana.PrivateKey{wsolAccount},
	}, nil
}

// BuildSellPlan swaps the pool token into the owner's WSOL account. The
// source account is closed only when the whole balance is sold.
func BuildSellPlan(params SellParams) (*Plan, error) {
	if params.AmountIn == 0 {
		return nil, fmt.Errorf("%w: sell amount is zero", types.ErrInvalidAmount)
	}

	if params.AmountIn > params.Balance {
		return nil, fmt.Errorf("%w: sell %d, balance %d", types.ErrInsufficientBalance, params.AmountIn, params.Balance)
	}

	wsolAccount, err := GetAssociatedTokenAccount(params.Owner, config.WRAPPED_SOL)
	if err != nil {
		return nil, err
	}

	ins := []solana.Instruction{}

	if !params.WsolAccountExists {
		createIns, err := associatedtokenaccount.NewCreateInstruction(params.Owner, params.Owner, config.WRAPPED_SOL).ValidateAndBuild()
		if err != nil {
			return nil, err
		}
		ins = append(ins, createIns)
	}

	swapIns, err := MakeRaydiumSwapFixedInInstruction(&LiquiditySwapFixedInInstructionParams{
		InAmount:         params.AmountIn,
		MinimumOutAmount: params.MinAmountOut,
		PoolKeys:         params.PoolKeys,
		TokenAccountIn:   params.TokenAccount,
		TokenAccountOut:  wsolAccount,
		Owner:            params.Owner,
	})
	if err != nil {
		return nil, err
	}
	ins = append(ins, swapIns)

	if params.AmountIn == params.Balance {
		closeIns, err := closeAccountInstruction(params.TokenAccount, params.Owner)
		if err != nil {
			return nil, err
		}
		ins = append(ins, closeIns)
	}

	return &Plan{Instructions: appendCompute(ins, params.Compute)}, nil
}

// BuildBurnPlan burns Amount raw units. Burning more than the balance is
// rejected before anything is built.
func BuildBurnPlan(params BurnParams) (*Plan, error) {
	if params.Amount == 0 {
		return nil, fmt.Errorf("%w: burn amount is zero", types.ErrInvalidAmount)
	}

	if params.Amount > params.Balance {
		return nil, fmt.Errorf("%w: burn %d, balance %d", types.ErrInsufficientBalance, params.Amount, params.Balance)
	}

	burnIns, err := token.NewBurnInstruction(
		params.Amount,
		params.TokenAccount,
		params.Mint,
		params.Owner,
		nil).ValidateAndBuild()
	if err != nil {
		return nil, err
	}

	ins := []solana.Instruction{burnIns}

	if params.Amount == params.Balance {
		closeIns, err := closeAccountInstruction(params.TokenAccount, params.Owner)
		if err != nil {
			return nil, err
		}
		ins = append(ins, closeIns)
	}

	return &Plan{Instructions: appendCompute(ins, params.Compute)}, nil
}

func BuildClosePlan(params CloseParams) (*Plan, error) {
	closeIns, err := closeAccountInstruction(params.TokenAccount, params.Owner)
	if err != nil {
		return nil, err
	}

	return &Plan{Instructions: appendCompute([]solana.Instruction{closeIns}, params.Compute)}, nil
}

func GetAssociatedTokenAccount(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	return tokenAccount, nil
}

func createWsolAccountInstructions(owner solana.PublicKey, account solana.PublicKey, lamports uint64) ([]solana.Instruction, error) {
	createInstr, err := system.NewCreateAccountInstruction(
		lamports,
		uint64(config.TA_SIZE),
		solana.TokenProgramID,
		owner,
		account).ValidateAndBuild()
	if err != nil {
		return nil, err
	}

	initInstr, err := token.NewInitializeAccountInstruction(
		account,
		config.WRAPPED_SOL,
		owner,
		solana.SysVarRentPubkey).ValidateAndBuild()
	if err != nil {
		return nil, err
	}

	return []solana.Instruction{createInstr, initInstr}, nil
}

func closeAccountInstruction(account solana.PublicKey, owner solana.PublicKey) (solana.Instruction, error) {
	return token.NewCloseAccountInstruction(account, owner, owner, nil).ValidateAndBuild()
}

func appendCompute(ins []solana.Instruction, compute ComputeUnit) []solana.Instruction {
	if compute.Units > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitLimitInstruction(compute.Units).Build())
	}

	if compute.MicroLamports > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitPriceInstruction(compute.MicroLamports).Build())
	}

	return ins
}
