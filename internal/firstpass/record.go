// Package firstpass reads the fixed-layout binary stats records emitted by
// the detector encoder's first pass.
package firstpass

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// RecordSize is the on-disk size of one record: 27 little-endian float64
// fields, per spec §6.
const RecordSize = 27 * 8

// Record is one first-pass statistics entry. Field order matches the wire
// layout exactly; the keyframe heuristic (§4.3.1) reads only a subset.
type Record struct {
	Frame                 float64
	Weight                float64
	IntraError            float64
	FrameAvgWaveletEnergy float64
	CodedError            float64
	SRCodedError          float64
	PcntInter             float64
	PcntMotion            float64
	PcntSecondRef         float64
	PcntNeutral           float64
	IntraSkipPct          float64
	InactiveZoneRows      float64
	InactiveZoneCols      float64
	MVr                   float64
	MVrAbs                float64
	MVc                   float64
	MVcAbs                float64
	MVrv                  float64
	MVcv                  float64
	MVInOutCount          float64
	NewMVCount            float64
	Duration              float64
	Count                 float64
	RawErrorStdev         float64
	IsFlash               uint64
	NoiseVar              float64
	CorCoeff              float64
}

// ReadRecord reads one 216-byte record from r. It returns io.EOF
// unmodified when r is at a clean end of stream (no bytes read yet), and a
// wrapped error for any other short or malformed read.
func ReadRecord(r io.Reader) (*Record, error) {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("firstpass: truncated record: %w", err)
		}
		return nil, err
	}

	rec := &Record{}
	fields := []*float64{
		&rec.Frame, &rec.Weight, &rec.IntraError, &rec.FrameAvgWaveletEnergy,
		&rec.CodedError, &rec.SRCodedError, &rec.PcntInter, &rec.PcntMotion,
		&rec.PcntSecondRef, &rec.PcntNeutral, &rec.IntraSkipPct,
		&rec.InactiveZoneRows, &rec.InactiveZoneCols, &rec.MVr, &rec.MVrAbs,
		&rec.MVc, &rec.MVcAbs, &rec.MVrv, &rec.MVcv, &rec.MVInOutCount,
		&rec.NewMVCount, &rec.Duration, &rec.Count, &rec.RawErrorStdev,
	}
	for i, f := range fields {
		bits := binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
		*f = math.Float64frombits(bits)
	}

	// is_flash is stored as an f64 containing an integer bit pattern: read
	// the raw bits, not the float value.
	rec.IsFlash = binary.LittleEndian.Uint64(buf[24*8 : 24*8+8])
	rec.NoiseVar = math.Float64frombits(binary.LittleEndian.Uint64(buf[25*8 : 25*8+8]))
	rec.CorCoeff = math.Float64frombits(binary.LittleEndian.Uint64(buf[26*8 : 26*8+8]))

	return rec, nil
}
