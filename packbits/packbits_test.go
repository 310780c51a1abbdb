package packbits

import (
	"bytes"
	"errors"
	"testing"
)

func roundtrip(t *testing.T, data []byte) {
	t.Helper()

	enc := NewEncoder()
	encoded := append(enc.Encode(data), enc.Finalize()...)

	dec := NewDecoder()
	decoded := dec.Decode(encoded)
	if err := dec.Finalize(); err != nil {
		t.Fatalf("finalize after round-trip: %v", err)
	}

	if !bytes.Equal(decoded, data) {
		t.Fatalf("round-trip mismatch:\n got  %v\n want %v", decoded, data)
	}
}

func TestRoundtrip(t *testing.T) {
	repeat := func(b byte, n int) []byte {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = b
		}
		return buf
	}

	cases := map[string][]byte{
		"empty":        {},
		"single_byte":  {0xAB},
		"repeated_512": repeat(0xAB, 512),
		"incrementing": func() []byte {
			buf := make([]byte, 512)
			for i := range buf {
				buf[i] = byte(i)
			}
			return buf
		}(),
		"alternating_blocks": func() []byte {
			var buf []byte
			repeatOn := true
			for len(buf) < 512 {
				if repeatOn {
					buf = append(buf, repeat(0, 5)...)
				} else {
					for b := byte(0); b < 5; b++ {
						buf = append(buf, b)
					}
				}
				repeatOn = !repeatOn
			}
			return buf[:512]
		}(),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			roundtrip(t, data)
		})
	}
}

func TestEncodeReferenceVectors(t *testing.T) {
	repeatByte := func(b byte, n int) []byte {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = b
		}
		return buf
	}

	cases := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{"single", []byte("a"), []byte{0x00, 'a'}},
		{"literal", []byte("abcdefg"), append([]byte{0x06}, "abcdefg"...)},
		{"repeated_17", repeatByte('a', 17), []byte{0xF0, 'a'}},
		{"repeated_144", repeatByte('a', 144), []byte{0x81, 'a', 0xF1, 'a'}},
		{"mixed", []byte("abcdeeeeeeeeeeeeeeeefg"), []byte{0x03, 'a', 'b', 'c', 'd', 0xF1, 'e', 0x01, 'f', 'g'}},
		{"empty", nil, nil},
		{
			"apple_reference",
			[]byte{
				0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0xAA, 0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0x22,
				0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA,
			},
			[]byte{
				0xFE, 0xAA, 0x02, 0x80, 0x00, 0x2A, 0xFD, 0xAA, 0x03, 0x80, 0x00, 0x2A, 0x22, 0xF7, 0xAA,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc := NewEncoder()
			got := append(enc.Encode(c.input), enc.Finalize()...)
			if !bytes.Equal(got, c.want) {
				t.Errorf("encode(%v) = % X, want % X", c.input, got, c.want)
			}
		})
	}
}

func TestDecoderDanglingLiteral(t *testing.T) {
	dec := NewDecoder()
	dec.Decode([]byte{0x04, 'a', 'b'}) // control byte asks for 5 bytes, only 2 supplied

	err := dec.Finalize()
	var dl *DanglingLiteralError
	if !errors.As(err, &dl) {
		t.Fatalf("Finalize() = %v, want *DanglingLiteralError", err)
	}
	if dl.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", dl.Remaining)
	}
}

func TestDecoderDanglingRepeated(t *testing.T) {
	dec := NewDecoder()
	dec.Decode([]byte{0xFE}) // repeat control byte with no following byte

	if err := dec.Finalize(); !errors.Is(err, ErrDanglingRepeated) {
		t.Fatalf("Finalize() = %v, want ErrDanglingRepeated", err)
	}
}

func TestDecoderNoOp(t *testing.T) {
	dec := NewDecoder()
	out := dec.Decode([]byte{0x80, 0x00, 'a'}) // -128 no-op, then a 1-byte literal
	if !bytes.Equal(out, []byte{'a'}) {
		t.Errorf("Decode() = %v, want [a]", out)
	}
	if err := dec.Finalize(); err != nil {
		t.Errorf("Finalize() = %v, want nil", err)
	}
}

func TestChunkedAcrossCalls(t *testing.T) {
	enc := NewEncoder()
	data := append(append([]byte("abcd"), bytes.Repeat([]byte{'e'}, 16)...), []byte("fg")...)
	encoded := append(enc.Encode(data), enc.Finalize()...)

	dec := NewDecoder()
	var decoded []byte
	for _, b := range encoded { // one byte at a time, worst case chunking
		decoded = append(decoded, dec.Decode([]byte{b})...)
	}
	if err := dec.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("got %v, want %v", decoded, data)
	}
}
