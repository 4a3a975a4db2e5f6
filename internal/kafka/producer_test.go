package kafka

import (
	"context"
	"testing"
	"time"
)

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer loop did not exit")
	}
}

func TestProducerCloseThenCancel(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "orders", 16)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Close()
	cancel()
	waitClosed(t, p)

	// a second Close after shutdown must not panic
	p.Close()
}

func TestProducerCancelThenClose(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "orders", 16)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	p.Close()
	waitClosed(t, p)
}
