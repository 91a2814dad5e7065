// Package y4m implements the YUV4MPEG-2 streaming header and frame codec.
package y4m

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ColorSpace is one of the closed set of YUV4MPEG-2 color space tags.
type ColorSpace int

const (
	// ColorSpaceNone means the header carried no C tag.
	ColorSpaceNone ColorSpace = iota
	ColorSpace410
	ColorSpace411
	ColorSpace420p10
	ColorSpace422
	ColorSpace440
	ColorSpace444
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpace410:
		return "410"
	case ColorSpace411:
		return "411"
	case ColorSpace420p10:
		return "420p10"
	case ColorSpace422:
		return "422"
	case ColorSpace440:
		return "440"
	case ColorSpace444:
		return "444"
	default:
		return ""
	}
}

func parseColorSpace(tag string) (ColorSpace, error) {
	switch tag {
	case "410":
		return ColorSpace410, nil
	case "411":
		return ColorSpace411, nil
	case "420p10":
		return ColorSpace420p10, nil
	case "422":
		return ColorSpace422, nil
	case "440":
		return ColorSpace440, nil
	case "444":
		return ColorSpace444, nil
	default:
		return ColorSpaceNone, fmt.Errorf("unsupported colorspace %q", tag)
	}
}

// Header holds the parsed fields of a YUV4MPEG-2 stream header. The raw
// bytes are kept verbatim so re-emission is byte-exact, per §9's
// header-preserving round trip.
type Header struct {
	Width       uint32
	Height      uint32
	Rate        string
	Interlace   *string
	AspectRatio *string
	ColorSpace  ColorSpace

	raw []byte
}

// Bytes returns the original header bytes, including the trailing LF.
func (h *Header) Bytes() []byte {
	return h.raw
}

// CalcFrameSize returns the payload size in bytes for one frame, per the
// table in spec §6. A missing color space defaults to 420p10.
func (h *Header) CalcFrameSize() int {
	cs := h.ColorSpace
	if cs == ColorSpaceNone {
		cs = ColorSpace420p10
	}
	pixels := int(h.Width) * int(h.Height)
	switch cs {
	case ColorSpace410:
		return (pixels * 5) / 4
	case ColorSpace411:
		return (pixels * 3) / 2
	case ColorSpace420p10:
		return pixels * 3
	case ColorSpace422:
		return pixels * 2
	case ColorSpace440:
		return pixels * 2
	case ColorSpace444:
		return pixels * 3
	default:
		return pixels * 3
	}
}

// Write emits the header's original bytes verbatim.
func (h *Header) Write(w *bufio.Writer) error {
	_, err := w.Write(h.raw)
	return err
}

// ReadHeader parses a YUV4MPEG-2 header line from r, terminated by LF.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("y4m: reading header: %w", err)
	}
	trimmed := line
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	fields := strings.Split(string(trimmed), " ")
	if len(fields) == 0 || fields[0] != "YUV4MPEG2" {
		got := ""
		if len(fields) > 0 {
			got = fields[0]
		}
		return nil, fmt.Errorf("y4m: wrong magic word %q", got)
	}

	h := &Header{raw: line}
	var widthSet, heightSet, rateSet bool

	for _, tok := range fields[1:] {
		if tok == "" {
			continue
		}
		tag, val := tok[0], tok[1:]
		switch tag {
		case 'W':
			w, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("y4m: bad width %q: %w", val, err)
			}
			h.Width = uint32(w)
			widthSet = true
		case 'H':
			ht, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("y4m: bad height %q: %w", val, err)
			}
			h.Height = uint32(ht)
			heightSet = true
		case 'F':
			h.Rate = val
			rateSet = true
		case 'I':
			v := val
			h.Interlace = &v
		case 'A':
			v := val
			h.AspectRatio = &v
		case 'C':
			cs, err := parseColorSpace(val)
			if err != nil {
				return nil, fmt.Errorf("y4m: %w", err)
			}
			h.ColorSpace = cs
		case 'X':
			// comment parameter, ignored
		default:
			return nil, fmt.Errorf("y4m: unknown parameter %q", tok)
		}
	}

	if !widthSet {
		return nil, fmt.Errorf("y4m: missing width")
	}
	if !heightSet {
		return nil, fmt.Errorf("y4m: missing height")
	}
	if !rateSet {
		return nil, fmt.Errorf("y4m: missing rate")
	}

	return h, nil
}
