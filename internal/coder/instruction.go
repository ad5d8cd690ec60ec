package coder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidInstruction = errors.New("invalid instruction data")

// RaydiumAmmInstructionCoder decodes Raydium AMM v4 and compute budget
// instruction data.
type RaydiumAmmInstructionCoder struct{}

func NewRaydiumAmmInstructionCoder() *RaydiumAmmInstructionCoder {
	return &RaydiumAmmInstructionCoder{}
}

// Decode returns SwapBaseIn or SwapBaseOut.
func (coder *RaydiumAmmInstructionCoder) Decode(data []byte) (interface{}, error) {
	return decodeData(data)
}

func (coder *RaydiumAmmInstructionCoder) DecodeCompute(data []byte) (Compute, error) {
	return decodeCompute(data)
}

func decodeData(data []byte) (interface{}, error) {
	buf := bytes.NewReader(data)

	var instructionID byte
	if err := binary.Read(buf, binary.LittleEndian, &instructionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}

	switch instructionID {
	case SWAP_BASE_IN_INSTRUCTION:
		var instruction SwapBaseIn
		if err := binary.Read(buf, binary.LittleEndian, &instruction); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
		return instruction, nil
	case SWAP_BASE_OUT_INSTRUCTION:
		var instruction SwapBaseOut
		if err := binary.Read(buf, binary.LittleEndian, &instruction); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
		return instruction, nil
	default:
		return nil, fmt.Errorf("%w: unsupported instruction id %d", ErrInvalidInstruction, instructionID)
	}
}

func decodeCompute(data []byte) (Compute, error) {
	var instruction Compute

	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &instruction.Instruction); err != nil {
		return Compute{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}

	switch instruction.Instruction {
	case COMPUTE_UNIT_LIMIT_INSTRUCTION:
		var units uint32
		if err := binary.Read(buf, binary.LittleEndian, &units); err != nil {
			return Compute{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
		instruction.Value = uint64(units)
	case COMPUTE_UNIT_PRICE_INSTRUCTION:
		if err := binary.Read(buf, binary.LittleEndian, &instruction.Value); err != nil {
			return Compute{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
	default:
		return Compute{}, fmt.Errorf("%w: unsupported compute instruction %d", ErrInvalidInstruction, instruction.Instruction)
	}

	return instruction, nil
}
