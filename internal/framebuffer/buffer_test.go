package framebuffer

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/five82/scenevq/internal/y4m"
)

func TestReadInTwoFrames(t *testing.T) {
	buf := New(2, 4)
	ctx := context.Background()
	r := bufio.NewReader(bytes.NewBufferString("FRAME\nwhatFRAME\nlove"))

	status0, err := buf.ReadIn(ctx, r)
	if err != nil {
		t.Fatalf("ReadIn(0): %v", err)
	}
	if status0 != y4m.Processing {
		t.Fatalf("status0 = %v, want Processing", status0)
	}

	status1, err := buf.ReadIn(ctx, r)
	if err != nil {
		t.Fatalf("ReadIn(1): %v", err)
	}
	if status1 != y4m.Processing {
		t.Fatalf("status1 = %v, want Processing", status1)
	}

	f0, err := buf.Get(ctx, 0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if string(f0.Data) != "what" {
		t.Errorf("Get(0).Data = %q, want %q", f0.Data, "what")
	}

	f1, err := buf.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if string(f1.Data) != "love" {
		t.Errorf("Get(1).Data = %q, want %q", f1.Data, "love")
	}

	if got := buf.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}

	popped := buf.Pop()
	if popped == nil || string(popped.Data) != "what" {
		t.Errorf("Pop() = %v, want frame with data %q", popped, "what")
	}
	if got := buf.Size(); got != 1 {
		t.Errorf("Size() after pop = %d, want 1", got)
	}
}

func TestAddAndDoublePop(t *testing.T) {
	buf := New(2, 10)
	ctx := context.Background()

	data1 := make([]byte, 10)
	data1[9] = 1
	data2 := make([]byte, 10)
	data2[9] = 2

	if _, err := buf.Add(ctx, data1); err != nil {
		t.Fatalf("Add(1): %v", err)
	}
	if _, err := buf.Add(ctx, data2); err != nil {
		t.Fatalf("Add(2): %v", err)
	}

	f0 := buf.Pop()
	if f0 == nil || f0.Num != 0 {
		t.Fatalf("Pop() = %v, want frame num 0", f0)
	}
	f1 := buf.Pop()
	if f1 == nil || f1.Num != 1 {
		t.Fatalf("Pop() = %v, want frame num 1", f1)
	}
}

func TestGetBlocksUntilProduced(t *testing.T) {
	buf := New(2, 10)
	ctx := context.Background()

	done := make(chan uint64, 1)
	go func() {
		f, err := buf.Get(ctx, 0)
		if err != nil {
			t.Error(err)
			return
		}
		done <- f.Num
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := buf.Add(ctx, make([]byte, 10)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	select {
	case num := <-done:
		if num != 0 {
			t.Errorf("Get returned frame %d, want 0", num)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Get never unblocked")
	}
}

func TestGetReturnsNilAfterFinished(t *testing.T) {
	buf := New(2, 4)
	ctx := context.Background()
	r := bufio.NewReader(bytes.NewBufferString(""))

	status, err := buf.ReadIn(ctx, r)
	if err != nil {
		t.Fatalf("ReadIn: %v", err)
	}
	if status != y4m.Completed {
		t.Fatalf("status = %v, want Completed", status)
	}

	f, err := buf.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f != nil {
		t.Errorf("Get after finish = %v, want nil", f)
	}
}

func TestReadInCompletedDoesNotAdvanceCounters(t *testing.T) {
	buf := New(2, 4)
	ctx := context.Background()
	r := bufio.NewReader(bytes.NewBufferString(""))

	if _, err := buf.ReadIn(ctx, r); err != nil {
		t.Fatalf("ReadIn: %v", err)
	}
	if buf.nextNum != 0 {
		t.Errorf("nextNum = %d, want 0 (no phantom frame counted)", buf.nextNum)
	}
	if buf.Size() != 0 {
		t.Errorf("Size() = %d, want 0", buf.Size())
	}
}

func TestGetBeforeHeadPanics(t *testing.T) {
	buf := New(2, 10)
	ctx := context.Background()

	if _, err := buf.Add(ctx, make([]byte, 10)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	buf.Pop()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for get before head")
		}
	}()
	_, _ = buf.Get(ctx, 0)
}
