package insts

import "errors"

// Decode errors. Errors returned by the Decoder wrap exactly one of these,
// so callers can test them with errors.Is.
var (
	// ErrStreamExhausted means the input ended before a whole instruction
	// could be read.
	ErrStreamExhausted = errors.New("instruction stream exhausted")

	// ErrUnsupportedEncoding means the word lies in an encoding space that is
	// recognized but not implemented, such as compressed instructions.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrInvalidOpcode means the bits do not name any defined instruction.
	ErrInvalidOpcode = errors.New("invalid opcode")
)
