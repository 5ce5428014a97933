package orders

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"backend/internal/mailer"
	"backend/internal/models"
)

type stubRenderer struct {
	panicOn string
}

func (r *stubRenderer) Render(order models.Order) ([]byte, error) {
	if r.panicOn != "" && order.OrderNumber == r.panicOn {
		panic("render blew up")
	}
	return []byte("%PDF-1.7"), nil
}

type stubDispatcher struct {
	release   chan struct{}
	delivered chan string
}

func (d *stubDispatcher) SendInvoice(_ context.Context, order models.Order, _ []byte) (mailer.Result, error) {
	if d.release != nil {
		<-d.release
	}
	if d.delivered != nil {
		d.delivered <- order.OrderNumber
	}
	return mailer.ResultSent, nil
}

func TestEnqueueDoesNotBlockWhileWorkerIsBusy(t *testing.T) {
	dispatcher := &stubDispatcher{release: make(chan struct{})}
	p := NewPipeline(&stubRenderer{}, dispatcher, zap.NewNop())
	p.Start()

	// Saturate the queue well past capacity while the worker is stuck in
	// delivery. Every Enqueue must still return immediately.
	start := time.Now()
	for i := 0; i < queueCapacity*3; i++ {
		p.Enqueue(models.Order{OrderNumber: GenerateNumber(time.Now())})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("enqueueing took %v, expected it to never block", elapsed)
	}

	close(dispatcher.release)
	p.Stop()
}

func TestWorkerSurvivesRenderPanic(t *testing.T) {
	dispatcher := &stubDispatcher{delivered: make(chan string, 2)}
	p := NewPipeline(&stubRenderer{panicOn: "ORD-1-BADBADBAD"}, dispatcher, zap.NewNop())
	p.Start()

	p.Enqueue(models.Order{OrderNumber: "ORD-1-BADBADBAD"})
	p.Enqueue(models.Order{OrderNumber: "ORD-2-GOODGOOD1"})

	select {
	case got := <-dispatcher.delivered:
		if got != "ORD-2-GOODGOOD1" {
			t.Fatalf("delivered %q, want the order after the panicking one", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker never processed the order following the panic")
	}

	p.Stop()
}
