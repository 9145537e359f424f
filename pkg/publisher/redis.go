package publisher

import (
	"context"
	"encoding/json"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/redis/go-redis/v9"
)

type txPipeliner interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisTopOfBookPublisher keeps the latest snapshot of each instrument in a
// hash and announces it on a channel, in one MULTI/EXEC.
type RedisTopOfBookPublisher struct {
	client txPipeliner
	prefix string
}

func NewRedisTopOfBookPublisher(client txPipeliner, prefix string) *RedisTopOfBookPublisher {
	if prefix == "" {
		prefix = "lob"
	}
	return &RedisTopOfBookPublisher{client: client, prefix: prefix}
}

func (p *RedisTopOfBookPublisher) BookKey(tickID string) string {
	return p.prefix + ":book:" + tickID
}

func (p *RedisTopOfBookPublisher) Channel(tickID string) string {
	return p.BookKey(tickID) + ":updates"
}

func (p *RedisTopOfBookPublisher) PublishSnapshot(ctx context.Context, snap orderbook.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.BookKey(snap.TickID), snapshotFields(snap, payload))
		pipe.Publish(ctx, p.Channel(snap.TickID), payload)
		return nil
	})
	return err
}

// snapshotFields flattens top of book into hash fields. An empty side is
// stored as an empty string, never as a zero price.
func snapshotFields(snap orderbook.Snapshot, payload []byte) map[string]interface{} {
	fields := map[string]interface{}{
		"best_bid": "",
		"best_ask": "",
		"orders":   snap.Orders,
		"snapshot": string(payload),
	}
	if snap.BestBid.Valid {
		fields["best_bid"] = snap.BestBid.Decimal.String()
	}
	if snap.BestAsk.Valid {
		fields["best_ask"] = snap.BestAsk.Decimal.String()
	}
	return fields
}
