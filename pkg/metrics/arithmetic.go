package metrics

import "math"

// RatioScale is the fixed-point scale of Ratio results: 10000 means 100.00%.
const RatioScale = 10000

type operator int

const (
	opSum operator = iota
	opDifference
	opRatio
)

func (op operator) apply(a, b int64) int64 {
	switch op {
	case opSum:
		return a + b
	case opDifference:
		return a - b
	default:
		if b == 0 {
			return 0
		}
		return int64(math.Round(float64(a) / float64(b) * RatioScale))
	}
}

// Arithmetic is a gauge derived from two operands. It is never fresher than
// its stalest operand.
type Arithmetic struct {
	Publisher
	op    operator
	left  Gauge
	right Gauge
	value int64
}

func newArithmetic(op operator, left, right Gauge) *Arithmetic {
	a := &Arithmetic{op: op, left: left, right: right}
	left.Subscribe(a)
	right.Subscribe(a)
	a.value = op.apply(left.Value(), right.Value())
	return a
}

// Sum returns a gauge tracking left+right.
func Sum(left, right Gauge) *Arithmetic {
	return newArithmetic(opSum, left, right)
}

// Difference returns a gauge tracking left-right.
func Difference(left, right Gauge) *Arithmetic {
	return newArithmetic(opDifference, left, right)
}

// Ratio returns a gauge tracking round(numerator/denominator*RatioScale), or 0
// while the denominator is 0. Divide by 100 to read it as a percentage.
func Ratio(numerator, denominator Gauge) *Arithmetic {
	return newArithmetic(opRatio, numerator, denominator)
}

// OnUpdate implements Subscriber.
func (a *Arithmetic) OnUpdate() {
	a.value = a.op.apply(a.left.Value(), a.right.Value())
	a.Notify()
}

// Value implements Gauge.
func (a *Arithmetic) Value() int64 { return a.value }

// LastUpdate implements Gauge.
func (a *Arithmetic) LastUpdate() Timestamp {
	return min(a.left.LastUpdate(), a.right.LastUpdate())
}

// Close detaches the gauge from both operands.
func (a *Arithmetic) Close() {
	a.right.Unsubscribe(a)
	a.left.Unsubscribe(a)
}
