package feeder

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/five82/scenevq/internal/credit"
	"github.com/five82/scenevq/internal/framebuffer"
)

func TestFeederForwardsFramesAndGrantsCredits(t *testing.T) {
	buf := framebuffer.New(4, 4)
	ctx := context.Background()
	if _, err := buf.Add(ctx, []byte("what")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := buf.Add(ctx, []byte("love")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var out bytes.Buffer
	writer := bufio.NewWriter(&out)
	credits := credit.New()

	closed := false
	waited := false
	f := New(buf, writer, credits,
		func() error { closed = true; return nil },
		func() error { waited = true; return nil },
	)

	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// Allow the feeder to consume both frames, then signal completion.
	for i := 0; i < 1000 && buf.Size() > 0; i++ {
		time.Sleep(time.Millisecond)
	}
	r := bufio.NewReader(bytes.NewBufferString(""))
	if _, err := buf.ReadIn(ctx, r); err != nil {
		t.Fatalf("ReadIn: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "FRAME\nwhatFRAME\nlove" {
		t.Errorf("written bytes = %q", out.String())
	}
	if !closed {
		t.Error("closeInput was not called")
	}
	if !waited {
		t.Error("waitDetector was not called")
	}

	if credits.TryAcquire(2 + sentinelCredits) {
		// exactly 2 (one per frame) + sentinelCredits should be available
	} else {
		t.Error("expected 2 + sentinelCredits credits to be available")
	}
}
