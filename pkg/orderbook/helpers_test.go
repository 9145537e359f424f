package orderbook

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestOrder(id uint64, side Side, size, price string) Order {
	ts := epoch.Add(time.Duration(id) * time.Millisecond)
	return NewOrder("test", id, side, d(size), d(price), ts, ts)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s %s", want, got, fmt.Sprint(msgAndArgs...))
}

// checkInvariants walks the whole book and cross-checks the flat index, the
// level aggregates and the cached top of book.
func checkInvariants(t *testing.T, ob *LimitOrderBook) {
	t.Helper()
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	seen := make(map[uint64]int)
	for _, side := range []*bookSide{ob.bids, ob.asks} {
		side.levels.Ascend(func(level *Limit) bool {
			require.True(t, level.size.IsPositive(), "level %s on %s has size %s", level.price, side.side, level.size)
			require.Equal(t, int(level.orderCount), len(level.orders))
			require.Equal(t, len(level.orders), level.queue.Len())

			size, notional := decimal.Zero, decimal.Zero
			for i := 0; i < level.queue.Len(); i++ {
				o := level.queue.At(i)
				require.True(t, o.Price.Equal(level.price))
				require.Equal(t, side.side, o.Side)
				require.Same(t, o, level.orders[o.ID])
				require.Same(t, o, ob.orders[o.ID], "order %d not indexed", o.ID)
				size = size.Add(o.Size)
				notional = notional.Add(o.Notional())
				seen[o.ID]++
			}
			require.True(t, size.Equal(level.size), "size drift at %s", level.price)
			require.True(t, notional.Equal(level.totalNotional), "notional drift at %s", level.price)
			return true
		})
	}

	require.Equal(t, len(ob.orders), len(seen))
	for id, n := range seen {
		require.Equal(t, 1, n, "order %d reachable from %d levels", id, n)
	}
	require.Equal(t, bestOf(ob.bids), ob.bestBid)
	require.Equal(t, bestOf(ob.asks), ob.bestAsk)
}
