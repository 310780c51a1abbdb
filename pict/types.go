package pict

import (
	"fmt"
	"io"
	"log"

	"golang.org/x/text/encoding/charmap"
)

// Logger receives warnings for conditions spec.md treats as non-fatal: non-zero reserved-field
// content. It defaults to discarding output; callers that want to see warnings redirect it.
var Logger = log.New(io.Discard, "", 0)

// reader is the minimal big-endian, positioned read surface this package needs. mohawk.Reader
// satisfies it structurally; pict never imports the mohawk package, avoiding a cycle since mohawk
// imports pict to implement Mohawk.GetPICT.
type reader interface {
	ReadU8() (uint8, error)
	ReadI8() (int8, error)
	ReadU16() (uint16, error)
	ReadI16() (int16, error)
	ReadU32() (uint32, error)
	ReadFixed4() ([4]byte, error)
	ReadBytes(n int) ([]byte, error)
	SeekForward(n int64) error
	Pos() int64
}

// Point is a QuickDraw point: two big-endian u16 coordinates.
type Point struct {
	X, Y uint16
}

func parsePoint(r reader) (Point, error) {
	x, err := r.ReadU16()
	if err != nil {
		return Point{}, err
	}
	y, err := r.ReadU16()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// Rectangle is a QuickDraw rectangle: four big-endian u16 edges.
type Rectangle struct {
	Top, Left, Bottom, Right uint16
}

func parseRectangle(r reader) (Rectangle, error) {
	var vals [4]uint16
	for i := range vals {
		v, err := r.ReadU16()
		if err != nil {
			return Rectangle{}, err
		}
		vals[i] = v
	}
	return Rectangle{Top: vals[0], Left: vals[1], Bottom: vals[2], Right: vals[3]}, nil
}

// Width returns Right - Left.
func (rect Rectangle) Width() int { return int(rect.Right) - int(rect.Left) }

// Height returns Bottom - Top.
func (rect Rectangle) Height() int { return int(rect.Bottom) - int(rect.Top) }

// Matrix is a row-major 3x3 transformation matrix of big-endian u32 fixed-point values.
type Matrix [3][3]uint32

func parseMatrix(r reader) (Matrix, error) {
	var m Matrix
	for i := range m {
		for j := range m[i] {
			v, err := r.ReadU32()
			if err != nil {
				return Matrix{}, err
			}
			m[i][j] = v
		}
	}
	return m, nil
}

// skipFiller reads one byte that must be zero, returning ErrInvalidFiller otherwise.
func skipFiller(r reader) error {
	b, err := r.ReadU8()
	if err != nil {
		return err
	}
	if b != 0 {
		return fmt.Errorf("%w: got 0x%02X", ErrInvalidFiller, b)
	}
	return nil
}

// skipReserved reads n bytes that are conventionally zero. Non-zero content is tolerated, not an
// error, but is logged: reserved-field content carries no meaning this package interprets, so a
// non-zero run is surfaced as a warning rather than silently discarded.
func skipReserved(r reader, n int, field string) error {
	raw, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	for _, b := range raw {
		if b != 0 {
			Logger.Printf("pict: reserved field %s has non-zero content: % X", field, raw)
			break
		}
	}
	return nil
}

var cp1252Decoder = charmap.Windows1252.NewDecoder()

// decodeCP1252 decodes raw windows-1252 bytes, refusing (not substituting) on bytes the encoding
// cannot represent.
func decodeCP1252(raw []byte) (string, error) {
	out, err := cp1252Decoder.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCP1252, err)
	}
	return string(out), nil
}
