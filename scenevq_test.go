package scenevq

import (
	"context"
	"testing"
)

func TestNewAppliesOptions(t *testing.T) {
	r, err := New(WithCodec(CodecVP9), WithVMAFTarget(0.9), WithEncoders(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.config.Codec != CodecVP9 {
		t.Errorf("Codec = %v, want %v", r.config.Codec, CodecVP9)
	}
	if r.config.VMAFTarget != 0.9 {
		t.Errorf("VMAFTarget = %v, want 0.9", r.config.VMAFTarget)
	}
	if r.config.Encoders != 4 {
		t.Errorf("Encoders = %v, want 4", r.config.Encoders)
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(context.Background(), "", "script.vpy", nil); err == nil {
		t.Error("Run with empty input returned no error")
	}
}
