package y4m

import (
	"bufio"
	"bytes"
	"testing"
)

func TestReadFrameTwoFrames(t *testing.T) {
	data := "FRAME\nwhatFRAME\nlove"
	r := bufio.NewReader(bytes.NewBufferString(data))

	f0, status0, err := ReadFrame(r, 4)
	if err != nil {
		t.Fatalf("ReadFrame(0): %v", err)
	}
	if status0 != Processing {
		t.Fatalf("status0 = %v, want Processing", status0)
	}
	if string(f0.Data) != "what" {
		t.Errorf("f0.Data = %q, want %q", f0.Data, "what")
	}

	f1, status1, err := ReadFrame(r, 4)
	if err != nil {
		t.Fatalf("ReadFrame(1): %v", err)
	}
	if status1 != Processing {
		t.Fatalf("status1 = %v, want Processing", status1)
	}
	if string(f1.Data) != "love" {
		t.Errorf("f1.Data = %q, want %q", f1.Data, "love")
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString(""))
	f, status, err := ReadFrame(r, 4)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if status != Completed {
		t.Fatalf("status = %v, want Completed", status)
	}
	if f != nil {
		t.Errorf("frame = %v, want nil", f)
	}
}

func TestWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	f := &Frame{Num: 0, Data: []byte("what is love")}
	if err := WriteFrame(w, f); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	w.Flush()

	want := "FRAME\nwhat is love"
	if buf.String() != want {
		t.Errorf("WriteFrame output = %q, want %q", buf.String(), want)
	}
}
