package handler

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

func receive(t *testing.T, ch <-chan model.PrinterEvent) model.PrinterEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return model.PrinterEvent{}
}

func TestEventBus_Delivery(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	all := bus.Subscribe("")
	reports := bus.Subscribe(model.EventReportPrinted)

	bus.Publish(model.NewPrinterEvent(model.EventDocumentProcessed, model.HandlerTest, nil))
	bus.Publish(model.NewPrinterEvent(model.EventReportPrinted, model.HandlerTest, map[string]interface{}{"report": "X"}))

	if e := receive(t, all); e.EventType != model.EventDocumentProcessed {
		t.Fatalf("expected document event first, got %s", e.EventType)
	}
	if e := receive(t, all); e.EventType != model.EventReportPrinted {
		t.Fatalf("expected report event second, got %s", e.EventType)
	}

	e := receive(t, reports)
	if e.EventType != model.EventReportPrinted || e.Data["report"] != "X" {
		t.Fatalf("unexpected event %+v", e)
	}
	select {
	case extra := <-reports:
		t.Fatalf("type subscriber received %s", extra.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_Stop(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()

	ch := bus.Subscribe("")
	bus.Stop()
	bus.Stop()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber channel was not closed")
	}

	bus.Publish(model.NewPrinterEvent(model.EventHandlerStopped, model.HandlerTest, nil))

	if _, ok := <-bus.Subscribe(model.EventHandlerStopped); ok {
		t.Fatalf("subscribing to a stopped bus must return a closed channel")
	}
}

func TestEventBus_PublishNeverBlocks(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			bus.Publish(model.NewPrinterEvent(model.EventStatusChecked, model.HandlerTest, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a full bus")
	}
}
