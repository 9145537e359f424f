package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitNew(t *testing.T) {
	level := newLimit(d("100"))

	requireDecimal(t, "100", level.Price())
	requireDecimal(t, "0", level.Size())
	requireDecimal(t, "0", level.TotalNotional())
	assert.Zero(t, level.OrderCount())
	assert.True(t, level.IsEmpty())
	assert.Nil(t, level.front())
}

func TestLimitAddRemove(t *testing.T) {
	level := newLimit(d("100"))
	o1 := newTestOrder(1, BUY, "10", "100")
	o2 := newTestOrder(2, BUY, "20", "100")

	require.NoError(t, level.add(&o1))
	requireDecimal(t, "10", level.Size())
	requireDecimal(t, "1000", level.TotalNotional())
	assert.EqualValues(t, 1, level.OrderCount())

	require.NoError(t, level.add(&o2))
	requireDecimal(t, "30", level.Size())
	requireDecimal(t, "3000", level.TotalNotional())
	assert.EqualValues(t, 2, level.OrderCount())

	removed, ok := level.remove(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), removed.ID)
	requireDecimal(t, "20", level.Size())
	requireDecimal(t, "2000", level.TotalNotional())
	assert.EqualValues(t, 1, level.OrderCount())
	assert.Equal(t, uint64(2), level.front().ID)

	_, ok = level.remove(1)
	assert.False(t, ok, "second remove of the same id")

	_, ok = level.remove(2)
	require.True(t, ok)
	assert.True(t, level.IsEmpty())
	assert.Zero(t, level.OrderCount())
	requireDecimal(t, "0", level.TotalNotional())
}

func TestLimitAddDuplicateID(t *testing.T) {
	level := newLimit(d("100"))
	o1 := newTestOrder(1, BUY, "10", "100")
	dup := newTestOrder(1, BUY, "99", "100")

	require.NoError(t, level.add(&o1))
	err := level.add(&dup)
	require.ErrorIs(t, err, ErrDuplicateOrderID)
	requireDecimal(t, "10", level.Size())
	assert.EqualValues(t, 1, level.OrderCount())
}

func TestLimitAddPriceMismatchPanics(t *testing.T) {
	level := newLimit(d("100"))
	o := newTestOrder(1, BUY, "10", "101")

	assert.Panics(t, func() { _ = level.add(&o) })
}

func TestLimitSamePriceDifferentScale(t *testing.T) {
	level := newLimit(d("100"))
	o := newTestOrder(1, BUY, "10", "100.00")

	require.NoError(t, level.add(&o))
	requireDecimal(t, "1000", level.TotalNotional())
}

func TestLimitFillFrontKeepsTimePriority(t *testing.T) {
	level := newLimit(d("50"))
	for id := uint64(1); id <= 3; id++ {
		o := newTestOrder(id, SELL, "5", "50")
		require.NoError(t, level.add(&o))
	}

	maker := level.fillFront(d("2"))
	assert.Equal(t, uint64(1), maker.ID)
	requireDecimal(t, "3", maker.Size)
	requireDecimal(t, "13", level.Size())
	requireDecimal(t, "650", level.TotalNotional())
	assert.EqualValues(t, 3, level.OrderCount())
	assert.Equal(t, uint64(1), level.front().ID, "partially filled order keeps its place")

	maker = level.fillFront(d("3"))
	assert.True(t, maker.Size.IsZero())
	assert.EqualValues(t, 2, level.OrderCount())
	assert.Equal(t, uint64(2), level.front().ID)

	ids := []uint64{}
	for _, o := range level.snapshot() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []uint64{2, 3}, ids)
}

func TestLimitRemoveFromMiddle(t *testing.T) {
	level := newLimit(d("7.5"))
	for id := uint64(1); id <= 3; id++ {
		o := newTestOrder(id, SELL, "1.5", "7.5")
		require.NoError(t, level.add(&o))
	}

	_, ok := level.remove(2)
	require.True(t, ok)

	snap := level.snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, uint64(1), snap[0].ID)
	assert.Equal(t, uint64(3), snap[1].ID)
	requireDecimal(t, "3", level.Size())
	requireDecimal(t, "22.5", level.TotalNotional())
}

func TestLimitFillFrontOverfillPanics(t *testing.T) {
	level := newLimit(d("10"))
	o := newTestOrder(1, SELL, "1", "10")
	require.NoError(t, level.add(&o))

	assert.Panics(t, func() { level.fillFront(d("2")) })
}
