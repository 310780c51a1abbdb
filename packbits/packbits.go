package packbits

import "fmt"

const (
	minRepeated = 3
	maxRepeated = 128
	maxLiteral  = 128
)

// DanglingLiteralError is returned by Decoder.Finalize when the stream ends in the middle of a literal run.
type DanglingLiteralError struct {
	// Remaining is the number of literal bytes the decoder was still expecting.
	Remaining int
}

func (e *DanglingLiteralError) Error() string {
	return fmt.Sprintf("packbits: dangling literal run, %d byte(s) still expected", e.Remaining)
}

// ErrDanglingRepeated is returned by Decoder.Finalize when the stream ends right after a repeat control byte,
// before the byte to repeat was read.
var ErrDanglingRepeated = fmt.Errorf("packbits: dangling repeated run")

type decodeState int

const (
	decodeIdle decodeState = iota
	decodeLiteral
	decodeRepeat
)

// Decoder is a streaming PackBits decoder. The zero value is ready to use.
type Decoder struct {
	state     decodeState
	remaining int // decodeLiteral: bytes still to copy verbatim
	count     int // decodeRepeat: repetitions still to emit
}

// NewDecoder returns a Decoder in the Idle state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode consumes input and returns the decoded bytes. Input may be handed over in arbitrarily small chunks
// across calls; the decoder may be left mid-run between calls.
func (d *Decoder) Decode(input []byte) []byte {
	out := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		switch d.state {
		case decodeIdle:
			n := int8(input[i])
			i++
			switch {
			case n >= 0:
				d.remaining = int(n) + 1
				d.state = decodeLiteral
			case n == -128:
				// no-op
			default:
				d.count = int(-n) + 1
				d.state = decodeRepeat
			}

		case decodeRepeat:
			b := input[i]
			i++
			for k := 0; k < d.count; k++ {
				out = append(out, b)
			}
			d.state = decodeIdle

		case decodeLiteral:
			n := len(input) - i
			if n > d.remaining {
				n = d.remaining
			}
			out = append(out, input[i:i+n]...)
			i += n
			d.remaining -= n
			if d.remaining == 0 {
				d.state = decodeIdle
			}
		}
	}
	return out
}

// Finalize asserts the decoder is Idle, returning a DanglingLiteralError or ErrDanglingRepeated otherwise.
func (d *Decoder) Finalize() error {
	switch d.state {
	case decodeIdle:
		return nil
	case decodeRepeat:
		return ErrDanglingRepeated
	default: // decodeLiteral
		return &DanglingLiteralError{Remaining: d.remaining}
	}
}

type encodeState int

const (
	encodeIdle encodeState = iota
	encodeLiteral
	encodeRepeat
)

// Encoder is a streaming, look-ahead-free, single-pass PackBits encoder. The zero value is ready to use.
type Encoder struct {
	state       encodeState
	literal     []byte
	repeatByte  byte
	repeatCount int
}

// NewEncoder returns an Encoder in the Idle state.
func NewEncoder() *Encoder {
	return &Encoder{literal: make([]byte, 0, maxLiteral)}
}

func appendLiteralRun(out []byte, buf []byte) []byte {
	out = append(out, byte(len(buf)-1))
	return append(out, buf...)
}

func appendRepeatRun(out []byte, value byte, count int) []byte {
	out = append(out, byte(-int8(count-1)))
	return append(out, value)
}

// trailingRunLength returns the length of the run of identical bytes at the end of buf.
func trailingRunLength(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	last := buf[len(buf)-1]
	n := 0
	for i := len(buf) - 1; i >= 0 && buf[i] == last; i-- {
		n++
	}
	return n
}

// Encode consumes input and returns whatever complete runs it produced. Pending partial runs are held
// internally until a later Encode call or Finalize flushes them.
func (e *Encoder) Encode(input []byte) []byte {
	var out []byte
	for _, b := range input {
		switch e.state {
		case encodeIdle:
			e.literal = append(e.literal[:0], b)
			e.state = encodeLiteral

		case encodeLiteral:
			if len(e.literal) == maxLiteral {
				out = appendLiteralRun(out, e.literal)
				e.literal = append(e.literal[:0], b)
				continue
			}
			e.literal = append(e.literal, b)
			if run := trailingRunLength(e.literal); run == minRepeated {
				if prefix := e.literal[:len(e.literal)-run]; len(prefix) > 0 {
					out = appendLiteralRun(out, prefix)
				}
				e.repeatByte = b
				e.repeatCount = minRepeated
				e.literal = e.literal[:0]
				e.state = encodeRepeat
			}

		case encodeRepeat:
			switch {
			case e.repeatCount == maxRepeated:
				out = appendRepeatRun(out, e.repeatByte, e.repeatCount)
				e.literal = append(e.literal[:0], b)
				e.state = encodeLiteral
			case b == e.repeatByte:
				e.repeatCount++
			default:
				out = appendRepeatRun(out, e.repeatByte, e.repeatCount)
				e.literal = append(e.literal[:0], b)
				e.state = encodeLiteral
			}
		}
	}
	return out
}

// Finalize flushes any pending literal or repeat run and resets the encoder to Idle.
func (e *Encoder) Finalize() []byte {
	var out []byte
	switch e.state {
	case encodeLiteral:
		if len(e.literal) > 0 {
			out = appendLiteralRun(out, e.literal)
		}
	case encodeRepeat:
		out = appendRepeatRun(out, e.repeatByte, e.repeatCount)
	}
	e.state = encodeIdle
	e.literal = e.literal[:0]
	return out
}
