// internal/protocol/reader.go
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// ReadExact reads until n bytes arrive or the timeout passes
func ReadExact(ctx context.Context, ch Channel, n int, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	buf := make([]byte, 0, n)
	for len(buf) < n {
		chunk, err := ch.Read(ctx, n-len(buf))
		if err != nil {
			return buf, fmt.Errorf("read %d of %d bytes: %w", len(buf), n, err)
		}
		if len(chunk) == 0 {
			if ctx.Err() != nil {
				return buf, fmt.Errorf("read %d of %d bytes: %w", len(buf), n, ctx.Err())
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		buf = append(buf, chunk...)
	}
	return buf, nil
}

// ReadUntil reads until the terminator byte arrives, plus trailing extra bytes
func ReadUntil(ctx context.Context, ch Channel, terminator byte, extra int, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf []byte
	for {
		if i := bytes.IndexByte(buf, terminator); i >= 0 && len(buf) >= i+1+extra {
			return buf[:i+1+extra], nil
		}
		chunk, err := ch.Read(ctx, 256)
		if err != nil {
			return buf, err
		}
		if len(chunk) == 0 {
			if ctx.Err() != nil {
				return buf, fmt.Errorf("terminator 0x%02X not received: %w", terminator, ctx.Err())
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		buf = append(buf, chunk...)
	}
}
