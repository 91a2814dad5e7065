package firstpass

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestReadRecordTwoRecords(t *testing.T) {
	buf := make([]byte, RecordSize*2)
	// first record: all zero, Frame field = 0.0 already.
	// second record: Frame field (first 8 bytes) = 1.0.
	binary.LittleEndian.PutUint64(buf[RecordSize:RecordSize+8], math.Float64bits(1.0))

	r := bytes.NewReader(buf)
	rec0, err := ReadRecord(r)
	if err != nil {
		t.Fatalf("ReadRecord(0): %v", err)
	}
	if rec0.Frame != 0.0 {
		t.Errorf("rec0.Frame = %v, want 0.0", rec0.Frame)
	}

	rec1, err := ReadRecord(r)
	if err != nil {
		t.Fatalf("ReadRecord(1): %v", err)
	}
	if rec1.Frame != 1.0 {
		t.Errorf("rec1.Frame = %v, want 1.0", rec1.Frame)
	}

	_, err = ReadRecord(r)
	if err != io.EOF {
		t.Errorf("ReadRecord(2) err = %v, want io.EOF", err)
	}
}

func TestReadRecordTruncated(t *testing.T) {
	buf := make([]byte, RecordSize-1)
	_, err := ReadRecord(bytes.NewReader(buf))
	if err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestReadRecordFieldOrder(t *testing.T) {
	buf := make([]byte, RecordSize)
	vals := []float64{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19,
		20, 21, 22, 23,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	binary.LittleEndian.PutUint64(buf[24*8:24*8+8], 1)
	binary.LittleEndian.PutUint64(buf[25*8:25*8+8], math.Float64bits(25))
	binary.LittleEndian.PutUint64(buf[26*8:26*8+8], math.Float64bits(26))

	rec, err := ReadRecord(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.PcntSecondRef != 8 {
		t.Errorf("PcntSecondRef = %v, want 8", rec.PcntSecondRef)
	}
	if rec.PcntNeutral != 9 {
		t.Errorf("PcntNeutral = %v, want 9", rec.PcntNeutral)
	}
	if rec.IsFlash != 1 {
		t.Errorf("IsFlash = %v, want 1", rec.IsFlash)
	}
	if rec.CorCoeff != 26 {
		t.Errorf("CorCoeff = %v, want 26", rec.CorCoeff)
	}
}
