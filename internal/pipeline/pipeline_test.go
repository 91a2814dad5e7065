package pipeline

import (
	"context"
	"testing"

	"github.com/five82/scenevq/internal/config"
	"github.com/five82/scenevq/internal/procx"
)

func TestEncoderForSelectsCodec(t *testing.T) {
	vp9, err := encoderFor(config.CodecVP9)
	if err != nil {
		t.Fatalf("encoderFor(vp9): %v", err)
	}
	if _, ok := vp9.(procx.VP9Encoder); !ok {
		t.Errorf("encoderFor(vp9) = %T, want procx.VP9Encoder", vp9)
	}

	av1, err := encoderFor(config.CodecAV1)
	if err != nil {
		t.Fatalf("encoderFor(av1): %v", err)
	}
	if _, ok := av1.(procx.AV1Encoder); !ok {
		t.Errorf("encoderFor(av1) = %T, want procx.AV1Encoder", av1)
	}

	if _, err := encoderFor(config.Codec("invalid")); err == nil {
		t.Error("encoderFor(invalid) returned no error")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewConfig("", "/tmp")
	if _, err := Run(context.Background(), cfg, nil); err == nil {
		t.Error("Run with empty input returned no error")
	}
}
