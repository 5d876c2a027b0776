// Package quant implements point quantization and quantization-step
// persistence (spec §2, §6.1 item 9).
//
// Grounded on the teacher's internal/dsp/quantize.go sign/magnitude
// round-then-scale idiom: that file rounds a DCT coefficient to the
// nearest multiple of a quantizer step and stores sign and magnitude
// separately. The same shape (round, split sign/magnitude, persist the
// scale factor exactly) applies here to 3-D coordinates instead of
// transform coefficients, generalized to the spec's explicit
// coef/exp step representation.
package quant

import (
	"errors"
	"math"
)

// ErrOverflow is returned when a quantized coordinate's magnitude does not
// fit in the configured per-axis bit budget.
var ErrOverflow = errors.New("quant: coordinate exceeds axis bit budget")

// Step is a quantization step size persisted as step = coef * 2^(-exp),
// with 1 <= coef < 2^30 after normalizing into [1,2). It is reproduced
// byte-for-byte on decode so re-quantization is exact (spec §2).
type Step struct {
	Coef int32 // 1 <= Coef < 2^30
	Neg  bool  // true if the step is negative (signum bit 0 in the wire format)
	Exp  int32 // exponent, step = Coef * 2^(-Exp)
}

// NewStep derives the persisted (coef, exp) representation for a positive
// or negative real-valued step size, following spec §2's normalization:
// normalize |value| into [1,2) by repeated halving or doubling, counting
// the number of halvings (positive) or doublings (negative, hence
// negated) as count, then coef = floor(coord*2^29), exp = 29-count, so
// that Coef * 2^(-Exp) reproduces |value|.
func NewStep(value float64) Step {
	neg := value < 0
	coord := math.Abs(value)
	count := 0
	for coord >= 2 {
		coord /= 2
		count++
	}
	for coord < 1 {
		coord *= 2
		count--
	}
	coef := int32(math.Floor(coord * (1 << 29)))
	return Step{Coef: coef, Neg: neg, Exp: int32(29 - count)}
}

// Valid reports whether the step's coefficient fits the wire format's
// 30-bit field (spec: "a step-size coefficient would exceed 30 bits" is
// an Overflow error).
func (s Step) Valid() bool {
	return s.Coef >= 1 && s.Coef < (1<<30)
}

// Value reconstructs the floating-point step size from its persisted
// representation.
func (s Step) Value() float64 {
	v := float64(s.Coef) * math.Pow(2, -float64(s.Exp))
	if s.Neg {
		v = -v
	}
	return v
}

// Quantize maps a real coordinate to its signed integer quantization index
// q = signum(p) * floor(|p|/step + 0.5), and verifies it fits in bitBudget
// bits (|q| < 2^(bitBudget-2), per spec §1).
func Quantize(p float64, step Step, bitBudget int) (int32, error) {
	stepVal := step.Value()
	var q int32
	if p == 0 {
		q = 0
	} else {
		mag := math.Floor(math.Abs(p)/stepVal + 0.5)
		if p < 0 {
			q = -int32(mag)
		} else {
			q = int32(mag)
		}
	}
	limit := int64(1) << uint(bitBudget-2)
	if int64(q) >= limit || int64(q) <= -limit {
		return 0, ErrOverflow
	}
	return q, nil
}

// Dequantize multiplies an integer quantization index by the step size,
// skipping the multiply when step is exactly 1.0 (spec's re-quantization
// rule, §Re-quantization).
func Dequantize(q int32, step Step) float64 {
	v := step.Value()
	if v == 1.0 {
		return float64(q)
	}
	return float64(q) * v
}
