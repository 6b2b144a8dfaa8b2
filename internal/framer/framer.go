// Package framer recovers protocol lines from a byte stream that may split
// or merge them arbitrarily.
package framer

import (
	"bytes"
	"errors"
)

// DefaultMaxCarry bounds the unterminated bytes kept between reads.
const DefaultMaxCarry = 8192

// ErrLineTooLong is returned once the carry-over exceeds its bound; the
// connection is expected to be dropped.
var ErrLineTooLong = errors.New("framer: line exceeds carry-over limit")

// Framer holds the carry-over of one connection. It is not safe for
// concurrent use; each connection owns its own.
type Framer struct {
	buf      []byte
	maxCarry int
}

func New(maxCarry int) *Framer {
	if maxCarry <= 0 {
		maxCarry = DefaultMaxCarry
	}
	return &Framer{maxCarry: maxCarry}
}

// Feed appends data and returns every line it completed, in arrival order,
// without terminators. Unterminated trailing bytes stay buffered.
func (f *Framer) Feed(data []byte) ([]string, error) {
	f.buf = append(f.buf, data...)

	last := bytes.LastIndexByte(f.buf, '\n')
	if last < 0 {
		if len(f.buf) > f.maxCarry {
			f.buf = nil
			return nil, ErrLineTooLong
		}
		return nil, nil
	}

	segments := bytes.Split(f.buf[:last], []byte{'\n'})
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = bytes.TrimPrefix(seg, []byte{'\r'})
		seg = bytes.TrimSuffix(seg, []byte{'\r'})
		lines = append(lines, string(seg))
	}

	rest := f.buf[last+1:]
	f.buf = append(f.buf[:0:0], rest...)
	if len(f.buf) > f.maxCarry {
		f.buf = nil
		return lines, ErrLineTooLong
	}
	return lines, nil
}

// Pending reports how many unterminated bytes are buffered.
func (f *Framer) Pending() int {
	return len(f.buf)
}
