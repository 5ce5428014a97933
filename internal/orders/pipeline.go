package orders

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"backend/internal/mailer"
	"backend/internal/models"
)

// Renderer turns an order into a printable invoice byte stream.
type Renderer interface {
	Render(order models.Order) ([]byte, error)
}

// Dispatcher attempts one-shot delivery of a rendered invoice.
type Dispatcher interface {
	SendInvoice(ctx context.Context, order models.Order, pdf []byte) (mailer.Result, error)
}

const queueCapacity = 64

// Pipeline runs the invoice render+send side effect of order creation off
// the request path. Enqueue never blocks: the HTTP response returns before
// (and regardless of whether) the invoice work completes. Failures are
// logged and fully isolated from the originating request.
type Pipeline struct {
	jobs       chan models.Order
	renderer   Renderer
	dispatcher Dispatcher
	log        *zap.Logger
	wg         sync.WaitGroup
}

func NewPipeline(renderer Renderer, dispatcher Dispatcher, log *zap.Logger) *Pipeline {
	return &Pipeline{
		jobs:       make(chan models.Order, queueCapacity),
		renderer:   renderer,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Start launches the background worker.
func (p *Pipeline) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop drains the queue and waits for the worker to exit.
func (p *Pipeline) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Enqueue hands the order to the background worker. When the queue is
// saturated the job is dropped with a log line; the order itself is already
// persisted and unaffected.
func (p *Pipeline) Enqueue(order models.Order) {
	select {
	case p.jobs <- order:
	default:
		p.log.Warn("invoice queue full, dropping job",
			zap.String("orderNumber", order.OrderNumber))
	}
}

func (p *Pipeline) run() {
	defer p.wg.Done()
	for order := range p.jobs {
		p.process(order)
	}
}

func (p *Pipeline) process(order models.Order) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("invoice job panic recovered",
				zap.String("orderNumber", order.OrderNumber),
				zap.Any("panic", r))
		}
	}()

	pdf, err := p.renderer.Render(order)
	if err != nil {
		p.log.Error("invoice render failed",
			zap.String("orderNumber", order.OrderNumber),
			zap.Error(err))
		return
	}

	result, err := p.dispatcher.SendInvoice(context.Background(), order, pdf)
	if err != nil {
		p.log.Error("invoice email failed",
			zap.String("orderNumber", order.OrderNumber),
			zap.Error(err))
		return
	}

	p.log.Info("invoice job finished",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("result", string(result)))
}
