package circuit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrRegisterSizeMismatch is returned for non-positive register sizes and
// for registers that do not fit the circuit they are attached to.
var ErrRegisterSizeMismatch = errors.New("circuit: register size mismatch")

// Register is a fixed-size named collection of qubit or classical bit
// handles. Immutable after construction.
type Register struct {
	name    string
	handles []uuid.UUID
}

// NewRegister creates a register of the given size. Size must be positive.
func NewRegister(size int, name string) (*Register, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrRegisterSizeMismatch, size)
	}
	handles := make([]uuid.UUID, size)
	for i := range handles {
		handles[i] = uuid.New()
	}
	return &Register{name: name, handles: handles}, nil
}

// Size returns the number of bits in the register.
func (r *Register) Size() int { return len(r.handles) }

// Name returns the register's name.
func (r *Register) Name() string { return r.name }

// Handle returns the opaque identity of bit i.
func (r *Register) Handle(i int) uuid.UUID { return r.handles[i] }

// Bit formats the label of bit i, e.g. "c[0]".
func (r *Register) Bit(i int) string { return fmt.Sprintf("%s[%d]", r.name, i) }
