package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

func TestWriter_SendToFileQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.bin")
	w := NewWriter([]Queue{{
		Name:           "CAJA1",
		ConnectionType: model.ConnectionTypeFile,
		Settings:       map[string]interface{}{"path": path},
	}}, zap.NewNop())

	ctx := context.Background()
	if err := w.Send(ctx, "CAJA1", []byte{0x1B, 0x40}); err != nil {
		t.Fatalf("first job: %v", err)
	}
	if err := w.Send(ctx, "CAJA1", []byte("ok\n")); err != nil {
		t.Fatalf("second job: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "\x1b@ok\n" {
		t.Fatalf("unexpected spool contents %q", got)
	}
	if !w.Reachable(ctx, "CAJA1") {
		t.Fatalf("expected file queue to be reachable")
	}
}

func TestWriter_UnknownQueue(t *testing.T) {
	w := NewWriter(nil, zap.NewNop())

	err := w.Send(context.Background(), "nope", []byte("x"))
	if !errors.Is(err, ErrUnknownQueue) {
		t.Fatalf("expected ErrUnknownQueue, got %v", err)
	}
	if w.Reachable(context.Background(), "nope") {
		t.Fatalf("unknown queue must not be reachable")
	}
}

func TestWriter_RegisterAndList(t *testing.T) {
	w := NewWriter([]Queue{{Name: "b", ConnectionType: model.ConnectionTypeTCP}}, zap.NewNop())
	w.Register(Queue{Name: "a", ConnectionType: model.ConnectionTypeFile})

	if !w.Has("a") || !w.Has("b") {
		t.Fatalf("expected both queues to be registered")
	}

	queues := w.Queues()
	if len(queues) != 2 || queues[0].Name != "a" || queues[1].Name != "b" {
		t.Fatalf("expected queues sorted by name, got %+v", queues)
	}
	if queues[0].Settings == nil {
		t.Fatalf("expected settings map to be initialized")
	}
}
