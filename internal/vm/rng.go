package vm

import (
	"math/rand"
	"time"
)

// random implements the "random" opcode's three-way contract: a
// positive argument returns a uniform value in [1, n] (or, once
// predictable mode has been entered, the next term of the
// deterministic cycle 1,2,...,n,1,2,...); zero reseeds from the
// current time (truly random thereafter); a negative value seeds
// predictable mode (used by test suites) and returns 0.
func (m *VM) random(n int16) uint16 {
	switch {
	case n > 0:
		if m.predictable {
			v := uint16(m.predictableCounter%int64(n)) + 1
			m.predictableCounter++
			return v
		}
		return uint16(m.rng.Int31n(int32(n)) + 1)
	case n == 0:
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		m.predictable = false
		return 0
	default:
		m.predictable = true
		m.predictableSeed = int64(n)
		m.predictableCounter = 0
		return 0
	}
}
