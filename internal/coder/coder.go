package coder

const (
	SWAP_BASE_IN_INSTRUCTION  = 9
	SWAP_BASE_OUT_INSTRUCTION = 11

	COMPUTE_UNIT_LIMIT_INSTRUCTION = 2
	COMPUTE_UNIT_PRICE_INSTRUCTION = 3
)

type SwapBaseIn struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

type SwapBaseOut struct {
	MaxAmountIn uint64
	AmountOut   uint64
}

// Compute is a decoded compute budget directive. Value holds the unit limit
// or the micro-lamport price depending on Instruction.
type Compute struct {
	Instruction uint8
	Value       uint64
}
