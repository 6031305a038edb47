package kafka

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Shutdown must survive the cancel-first ordering used by the exporter: the
// write loop closes the inbox on ctx.Done and Close must then be a no-op.
func TestProducerCancelThenClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, "orders.test", 8, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	time.Sleep(50 * time.Millisecond) // let the write loop observe the cancel
	p.Close()
	p.WaitClosed()
}

func TestProducerCloseIdempotent(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, "orders.test", 8, zap.NewNop())
	p.Start(context.Background())

	p.Close()
	p.Close()
	p.WaitClosed()
}
