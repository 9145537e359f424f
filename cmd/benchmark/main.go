package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/joripage/limit-orderbook/pkg/engine"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/shopspring/decimal"
)

const (
	minPrice = 10000 // in cents
	maxPrice = 20000
	minQty   = 1
	maxQty   = 100
)

var symbols = []string{"ABC", "XYZ"}

func randomOrder(r *rand.Rand, id uint64) orderbook.Order {
	side := orderbook.BUY
	if r.Intn(2) == 0 {
		side = orderbook.SELL
	}
	price := decimal.New(int64(minPrice+r.Intn(maxPrice-minPrice+1)), -2)
	qty := decimal.NewFromInt(int64(r.Intn(maxQty-minQty+1) + minQty))
	now := time.Now()
	return orderbook.NewOrder(symbols[r.Intn(len(symbols))], id, side, qty, price, now, now)
}

func main() {
	var numOrders int
	var mode string
	flag.IntVar(&numOrders, "orders", 1_000_000, "number of orders to send")
	flag.StringVar(&mode, "mode", string(orderbook.ModeLimit), "match mode: LIMIT, MARKET, IOC or FOK")
	flag.Parse()

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var totalMatched, totalQtyCents atomic.Int64
	cb := func(fills []orderbook.Fill) {
		for _, f := range fills {
			n := totalMatched.Add(1)
			totalQtyCents.Add(f.Quantity.Shift(2).IntPart())
			if n <= 5 {
				log.Printf("Match: maker[%d] <=> taker[%d] %s @ %s qty %s\n",
					f.MakerID, f.TakerID, f.TickID, f.Price, f.Quantity)
			}
		}
	}

	engines := make([]*engine.Engine, 0, len(symbols))
	for _, s := range symbols {
		e := engine.New(s)
		e.Book().OnTrade(cb)
		engines = append(engines, e)
	}
	router, err := engine.NewRouter(engines...)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = router.Run(ctx)
	}()

	rejected := 0
	start := time.Now()
	for i := 0; i < numOrders; i++ {
		if _, err := router.MatchOrder(ctx, randomOrder(r, uint64(i+1)), orderbook.MatchMode(mode)); err != nil {
			rejected++
		}
	}
	elapsed := time.Since(start)

	cancel()
	<-done

	resting := 0
	for _, e := range engines {
		resting += e.Book().Len()
	}

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Rejected         : %d\n", rejected)
	fmt.Printf("Total Matches    : %d\n", totalMatched.Load())
	fmt.Printf("Total Matched Qty: %s\n", decimal.New(totalQtyCents.Load(), -2))
	fmt.Printf("Resting Orders   : %d\n", resting)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Throughput       : %.0f orders/s\n", float64(numOrders)/elapsed.Seconds())
}
