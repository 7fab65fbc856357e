package metrics

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now Timestamp
}

func (c *fakeClock) Now() Timestamp { return c.now }

func (c *fakeClock) set(d time.Duration) { c.now = Timestamp(d) }

type countingSubscriber struct {
	calls    int
	onUpdate func()
}

func (s *countingSubscriber) OnUpdate() {
	s.calls++
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func TestPublisherNotifiesInOrder(t *testing.T) {
	var p Publisher
	var order []int
	for i := range 3 {
		p.Subscribe(&countingSubscriber{onUpdate: func() { order = append(order, i) }})
	}
	p.Notify()
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestPublisherToleratesSelfRemoval(t *testing.T) {
	var p Publisher
	first := &countingSubscriber{}
	second := &countingSubscriber{}
	first.onUpdate = func() { p.Unsubscribe(first) }
	p.Subscribe(first)
	p.Subscribe(second)

	p.Notify()
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Equal(t, 1, p.Subscribers())

	p.Notify()
	require.Equal(t, 1, first.calls)
	require.Equal(t, 2, second.calls)
}

func TestBindFiresImmediatelyAndStopsAfterClose(t *testing.T) {
	clock := &fakeClock{}
	leaf := NewLeaf(clock)
	var seen []int64
	b := Bind(leaf, func(g Gauge) { seen = append(seen, g.Value()) })
	leaf.Update(7)
	b.Close()
	leaf.Update(9)
	b.Close()

	require.Equal(t, []int64{0, 7}, seen)
	require.Zero(t, leaf.Subscribers())
}

func TestLeafUpdateIsNoOpForSameValue(t *testing.T) {
	clock := &fakeClock{}
	clock.set(time.Second)
	leaf := NewLeafValue(clock, 5)
	sub := &countingSubscriber{}
	leaf.Subscribe(sub)

	clock.set(2 * time.Second)
	leaf.Update(5)
	require.Equal(t, Timestamp(time.Second), leaf.LastUpdate())
	require.Zero(t, sub.calls)

	leaf.Update(6)
	require.Equal(t, Timestamp(2*time.Second), leaf.LastUpdate())
	require.Equal(t, 1, sub.calls)
}

func TestLeafLastUpdateNeverDecreases(t *testing.T) {
	clock := &fakeClock{}
	clock.set(5 * time.Second)
	leaf := NewLeaf(clock)
	leaf.Update(1)
	clock.set(3 * time.Second)
	leaf.Update(2)
	require.Equal(t, int64(2), leaf.Value())
	require.Equal(t, Timestamp(5*time.Second), leaf.LastUpdate())
}

func TestConstIsAlwaysFresh(t *testing.T) {
	c := NewConst(42)
	require.Equal(t, int64(42), c.Value())
	require.Equal(t, Always, c.LastUpdate())
}

func TestArithmetic(t *testing.T) {
	clock := &fakeClock{}
	a := NewLeafValue(clock, 30)
	b := NewLeafValue(clock, 12)

	sum := Sum(a, b)
	diff := Difference(a, b)
	ratio := Ratio(a, b)
	require.Equal(t, int64(42), sum.Value())
	require.Equal(t, int64(18), diff.Value())
	require.Equal(t, int64(25000), ratio.Value())

	b.Update(0)
	require.Equal(t, int64(30), sum.Value())
	require.Equal(t, int64(30), diff.Value())
	require.Zero(t, ratio.Value())

	a.Update(1)
	b.Update(3)
	require.Equal(t, int64(3333), ratio.Value())
}

func TestRatioZeroDenominator(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 1 << 40, -1 << 40} {
		require.Zero(t, Ratio(NewConst(n), NewConst(0)).Value(), "numerator %d", n)
	}
}

func TestArithmeticCloseUnsubscribes(t *testing.T) {
	clock := &fakeClock{}
	a := NewLeaf(clock)
	b := NewLeaf(clock)
	sum := Sum(a, b)
	require.Equal(t, 1, a.Subscribers())
	sum.Close()
	require.Zero(t, a.Subscribers())
	require.Zero(t, b.Subscribers())
}

func TestArithmeticFreshnessIsOperandMinimum(t *testing.T) {
	clock := &fakeClock{}
	a := NewLeaf(clock)
	b := NewLeaf(clock)
	sum := Sum(a, b)
	ratio := Ratio(a, NewConst(100))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 200 {
		clock.now += Timestamp(rng.IntN(1000) + 1)
		if rng.IntN(2) == 0 {
			a.Update(int64(i + 1))
		} else {
			b.Update(int64(i + 1))
		}
		require.Equal(t, min(a.LastUpdate(), b.LastUpdate()), sum.LastUpdate())
		require.Equal(t, a.LastUpdate(), ratio.LastUpdate())
	}
}

func TestSliceScenario(t *testing.T) {
	clock := &fakeClock{}
	source := NewLeaf(clock)
	slice := NewSlice(source, time.Second)

	var emitted []int64
	b := Bind(slice, func(g Gauge) { emitted = append(emitted, g.Value()) })
	defer b.Close()

	clock.set(1500 * time.Millisecond)
	source.Update(150)
	require.Equal(t, int64(100), slice.Value())
	require.Equal(t, int64(50), slice.Remainder())

	clock.set(2500 * time.Millisecond)
	source.Update(300)
	require.Equal(t, int64(125), slice.Value())
	require.Equal(t, int64(75), slice.Remainder())

	require.Equal(t, []int64{0, 100, 125}, emitted)
	require.Equal(t, source.LastUpdate(), slice.LastUpdate())
}

func TestSliceWaitsForBoundary(t *testing.T) {
	clock := &fakeClock{}
	source := NewLeaf(clock)
	slice := NewSlice(source, time.Second)

	clock.set(200 * time.Millisecond)
	source.Update(10)
	clock.set(900 * time.Millisecond)
	source.Update(40)
	require.Zero(t, slice.Value())

	// The baseline stayed at t=0, so the whole 0..1200ms span is split.
	clock.set(1200 * time.Millisecond)
	source.Update(60)
	require.Equal(t, int64(50), slice.Value())
	require.Equal(t, int64(10), slice.Remainder())
}

func TestSliceSpreadsLateSamplesOverTicks(t *testing.T) {
	clock := &fakeClock{}
	source := NewLeaf(clock)
	slice := NewSlice(source, time.Second)

	clock.set(4000 * time.Millisecond)
	source.Update(400)
	require.Equal(t, int64(100), slice.Value())
	require.Zero(t, slice.Remainder())

	clock.set(7000 * time.Millisecond)
	source.Update(700)
	require.Equal(t, int64(100), slice.Value())
}

func TestSliceIgnoresStaleSamples(t *testing.T) {
	clock := &fakeClock{}
	clock.set(3 * time.Second)
	source := NewLeafValue(clock, 10)
	slice := NewSlice(source, time.Second)
	sub := &countingSubscriber{}
	slice.Subscribe(sub)

	slice.OnUpdate()
	require.Zero(t, sub.calls)
}

func TestSliceConservesAccumulatedDelta(t *testing.T) {
	const period = time.Second
	for seed := uint64(1); seed <= 20; seed++ {
		clock := &fakeClock{}
		source := NewLeaf(clock)
		slice := NewSlice(source, period)

		cut := func(ts Timestamp) Timestamp { return ts / Timestamp(period) * Timestamp(period) }
		var total, emittedValue int64
		baseline := source.LastUpdate()
		started := false
		b := Bind(slice, func(g Gauge) {
			if !started {
				started = true
				return
			}
			ticks := int64((cut(source.LastUpdate()) - cut(baseline)) / Timestamp(period))
			require.GreaterOrEqual(t, ticks, int64(1))
			total += g.Value() * ticks
			baseline = source.LastUpdate()
			emittedValue = source.Value()
		})

		rng := rand.New(rand.NewPCG(seed, seed*7))
		value := int64(0)
		for range 500 {
			clock.now += Timestamp(time.Duration(rng.IntN(3500)+1) * time.Millisecond)
			value += int64(rng.IntN(5000) + 1)
			source.Update(value)
		}
		b.Close()

		require.Equal(t, emittedValue, total+slice.Remainder(), "seed %d", seed)
	}
}

func TestSliceCloseUnsubscribes(t *testing.T) {
	clock := &fakeClock{}
	source := NewLeaf(clock)
	slice := NewSlice(source, time.Second)
	require.Equal(t, 1, source.Subscribers())
	slice.Close()
	require.Zero(t, source.Subscribers())
}
