package protocol

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

func TestNew_ValidatesRequiredSettings(t *testing.T) {
	cases := map[string]struct {
		kind     model.ConnectionType
		settings map[string]interface{}
		wantErr  bool
	}{
		"serial ok":       {model.ConnectionTypeSerial, map[string]interface{}{"port": "/dev/ttyS0"}, false},
		"serial no port":  {model.ConnectionTypeSerial, map[string]interface{}{}, true},
		"usb missing pid": {model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "04b8"}, true},
		"tcp ok":          {model.ConnectionTypeTCP, map[string]interface{}{"host": "10.0.0.5"}, false},
		"file no path":    {model.ConnectionTypeFile, map[string]interface{}{}, true},
		"unknown":         {model.ConnectionType("PIGEON"), map[string]interface{}{}, true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.kind, tc.settings, zap.NewNop())
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDecodeSettings_WeakTypes(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
		want     TCPConfig
	}{
		{
			name:     "defaults",
			settings: map[string]interface{}{"host": "10.0.0.5"},
			want:     TCPConfig{Host: "10.0.0.5", Port: 9100, KeepAlive: true, Timeout: 5 * time.Second, ReadTimeout: 2 * time.Second, WriteTimeout: 10 * time.Second},
		},
		{
			name: "json numbers and strings",
			settings: map[string]interface{}{
				"host": "10.0.0.5", "port": float64(9101), "keep_alive": "false",
				"timeout": "250ms", "read_timeout": 1500, "write_timeout": "300",
			},
			want: TCPConfig{Host: "10.0.0.5", Port: 9101, Timeout: 250 * time.Millisecond, ReadTimeout: 1500 * time.Millisecond, WriteTimeout: 300 * time.Millisecond},
		},
		{
			name:     "env strings",
			settings: map[string]interface{}{"host": "printer.local", "port": "9200", "ssl": "true"},
			want:     TCPConfig{Host: "printer.local", Port: 9200, SSL: true, KeepAlive: true, Timeout: 5 * time.Second, ReadTimeout: 2 * time.Second, WriteTimeout: 10 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tcpConfigFrom(tt.settings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, *got)
			}
		})
	}

	if _, err := tcpConfigFrom(map[string]interface{}{"host": "h", "port": "ninety"}); err == nil {
		t.Fatalf("expected an error for a non-numeric port")
	}
}

func TestSerialConfigDefaults(t *testing.T) {
	cfg, err := serialConfigFrom(map[string]interface{}{"port": "COM3", "parity": "EVEN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaudRate != 9600 || cfg.DataBits != 8 || cfg.StopBits != 1 || cfg.Timeout != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Parity != "even" {
		t.Fatalf("expected parity to be lowercased, got %q", cfg.Parity)
	}
}

func TestParseHexID(t *testing.T) {
	for _, in := range []string{"04b8", "0x04b8", "0X04B8"} {
		id, err := parseHexID(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if id != 0x04b8 {
			t.Fatalf("%s: expected 0x04b8, got %#x", in, id)
		}
	}
	if _, err := parseHexID("zz"); err == nil {
		t.Fatalf("expected error for invalid id")
	}
}

func TestFileChannel_WriteAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	ch, err := New(model.ConnectionTypeFile, map[string]interface{}{"path": path}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := ch.Write(ctx, []byte("x")); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen before Open, got %v", err)
	}

	if err := ch.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ch.Write(ctx, []byte("hello ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ch.Write(ctx, []byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}

	stats := ch.Stats()
	if stats.BytesWritten != 11 || stats.IsConnected {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestTCPChannel_RoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		received <- buf
		conn.Write([]byte{0x06})
	}()

	addr := ln.Addr().(*net.TCPAddr)
	ch := NewTCPChannel(&TCPConfig{Host: "127.0.0.1", Port: addr.Port, Timeout: time.Second, ReadTimeout: time.Second}, zap.NewNop())

	ctx := context.Background()
	if err := ch.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ch.Close()

	if err := ch.Write(ctx, []byte{0x1B, 0x40, 'h', 'i', '\n'}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, []byte{0x1B, 0x40, 'h', 'i', '\n'}) {
			t.Fatalf("unexpected payload % X", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received payload")
	}

	reply, err := ReadExact(ctx, ch, 1, 2*time.Second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply[0] != 0x06 {
		t.Fatalf("expected ACK, got % X", reply)
	}
}

// scripted replays canned chunks, one per Read call
type scripted struct {
	chunks [][]byte
}

func (s *scripted) Open(context.Context) error          { return nil }
func (s *scripted) Close() error                        { return nil }
func (s *scripted) IsOpen() bool                        { return true }
func (s *scripted) Write(context.Context, []byte) error { return nil }
func (s *scripted) Type() model.ConnectionType          { return model.ConnectionTypeFile }
func (s *scripted) Stats() ProtocolStats                { return ProtocolStats{} }
func (s *scripted) Ping(context.Context) error          { return nil }
func (s *scripted) Read(ctx context.Context, n int) ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func TestReadUntil_IncludesTrailingBytes(t *testing.T) {
	ch := &scripted{chunks: [][]byte{{0x02, 'a'}, {}, {'b', 0x03}, {0x41, 0x42}}}

	got, err := ReadUntil(context.Background(), ch, 0x03, 1, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x02, 'a', 'b', 0x03, 0x41}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected % X, got % X", want, got)
	}
}

func TestReadExact_TimesOut(t *testing.T) {
	ch := &scripted{chunks: [][]byte{{0x05}}}

	got, err := ReadExact(context.Background(), ch, 5, 50*time.Millisecond)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if len(got) != 1 {
		t.Fatalf("expected the partial byte to be returned, got % X", got)
	}
}
