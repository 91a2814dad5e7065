package y4m

import (
	"bufio"
	"bytes"
	"testing"
)

func TestReadHeader(t *testing.T) {
	in := "YUV4MPEG2 W384 H288 F25:1 Ip A0:0 C420p10\n"
	h, err := ReadHeader(bufio.NewReader(bytes.NewBufferString(in)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Width != 384 {
		t.Errorf("Width = %d, want 384", h.Width)
	}
	if h.Height != 288 {
		t.Errorf("Height = %d, want 288", h.Height)
	}
	if h.Rate != "25:1" {
		t.Errorf("Rate = %q, want %q", h.Rate, "25:1")
	}
	if h.Interlace == nil || *h.Interlace != "p" {
		t.Errorf("Interlace = %v, want p", h.Interlace)
	}
	if h.ColorSpace != ColorSpace420p10 {
		t.Errorf("ColorSpace = %v, want C420p10", h.ColorSpace)
	}
}

func TestHeaderWriteRoundTrip(t *testing.T) {
	raw := "YUV4MPEG2 W384 H288 F25:1 Ip A0:0 C420p10\n"
	h, err := ReadHeader(bufio.NewReader(bytes.NewBufferString(raw)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := h.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Flush()

	if buf.String() != raw {
		t.Errorf("round trip = %q, want %q", buf.String(), raw)
	}
}

func TestCalcFrameSizeDefaultsToC420p10(t *testing.T) {
	raw := "YUV4MPEG2 W640 H480 F25:1 Ip A0:0\n"
	h, err := ReadHeader(bufio.NewReader(bytes.NewBufferString(raw)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got := h.CalcFrameSize(); got != 921600 {
		t.Errorf("CalcFrameSize() = %d, want 921600", got)
	}
}

func TestReadHeaderMissingMagic(t *testing.T) {
	_, err := ReadHeader(bufio.NewReader(bytes.NewBufferString("NOTYUV W1 H1 F1\n")))
	if err == nil {
		t.Fatal("expected error for wrong magic word")
	}
}

func TestReadHeaderMissingWidth(t *testing.T) {
	_, err := ReadHeader(bufio.NewReader(bytes.NewBufferString("YUV4MPEG2 H1 F1\n")))
	if err == nil {
		t.Fatal("expected error for missing width")
	}
}

func TestColorSpaceSizes(t *testing.T) {
	tests := []struct {
		cs   ColorSpace
		want int
	}{
		{ColorSpace410, 1250},
		{ColorSpace411, 1500},
		{ColorSpace420p10, 3000},
		{ColorSpace422, 2000},
		{ColorSpace440, 2000},
		{ColorSpace444, 3000},
	}
	for _, tt := range tests {
		h := &Header{Width: 100, Height: 10, ColorSpace: tt.cs}
		if got := h.CalcFrameSize(); got != tt.want {
			t.Errorf("CalcFrameSize() for %v = %d, want %d", tt.cs, got, tt.want)
		}
	}
}
