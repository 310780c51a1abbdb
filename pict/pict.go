package pict

import (
	"image"
	"image/color"
)

// PICT is the decoded result of a PICT resource: either an embedded JPEG byte string or a decoded
// RGB24 pixel buffer. At most one is produced per resource.
type PICT interface {
	isPICT()
}

// JPEG is a PICT whose CompressedQuickTime opcode embedded a JPEG byte string verbatim. Callers
// decode it with image/jpeg themselves; this package never decodes pixel data it doesn't have to.
type JPEG []byte

func (JPEG) isPICT() {}

// RGB24 is a PICT decoded from a DirectBitsRect opcode: Data holds Width*Height RGB triples,
// row-major, so len(Data) == 3*Width*Height.
type RGB24 struct {
	Width, Height int
	Data          []byte
}

func (RGB24) isPICT() {}

// Image converts the pixel buffer into a standard library image.Image, for callers that want to
// hand it to image/png or another encoder rather than walk Data directly.
func (p RGB24) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := (y*p.Width + x) * 3
			img.Set(x, y, color.RGBA{R: p.Data[i], G: p.Data[i+1], B: p.Data[i+2], A: 0xFF})
		}
	}
	return img
}

const headerSize = 512

// Decode reads a PICT resource's bytes from r: the 512-byte null header, the size/bounding-rect
// preamble, the mandatory VersionOp/Version/HeaderOp(-2) triple, then the opcode stream up to
// OpEndPic. It returns ErrUnableToFindImage if no image-producing opcode was seen, and
// ErrDataRemaining if bytes remain in r after OpEndPic.
func Decode(r reader) (PICT, error) {
	header, err := r.ReadBytes(headerSize)
	if err != nil {
		return nil, err
	}
	for _, b := range header {
		if b != 0 {
			return nil, ErrNonEmptyHeader
		}
	}

	if _, err := r.ReadU16(); err != nil { // size, ignored
		return nil, err
	}
	if _, err := parseRectangle(r); err != nil { // bounding rect, discarded
		return nil, err
	}

	if _, err := expectOp(r, tagVersionOp); err != nil {
		return nil, err
	}
	if _, err := expectOp(r, tagVersion); err != nil {
		return nil, err
	}
	headerOp, err := expectOp(r, tagHeaderOp)
	if err != nil {
		return nil, err
	}
	if v := headerOp.(opHeaderOp).Version; v != -2 {
		return nil, &UnsupportedHeaderVersionError{Version: v}
	}

	var result PICT
	for {
		op, err := parseOperation(r)
		if err != nil {
			return nil, err
		}

		switch v := op.(type) {
		case opNop, opDefHilite, opClip, opTxFont, opTxFace, opPnSize, opTxSize, opTxRatio,
			opLongText, opLongComment:
			// parsed for alignment, otherwise discarded

		case opCompressedQuickTime:
			if result != nil {
				return nil, ErrAlreadyHaveImage
			}
			result = JPEG(v.Data)

		case opDirectBitsRect:
			if result != nil {
				return nil, ErrAlreadyHaveImage
			}
			result = RGB24{
				Width:  v.Destination.Width(),
				Height: v.Destination.Height(),
				Data:   v.PixData,
			}

		case opVersionOp, opVersion, opHeaderOp:
			return nil, &UnexpectedOpcodeError{Tag: op.tag()}

		case opEndPic:
			if _, err := r.ReadBytes(1); err == nil {
				return nil, ErrDataRemaining
			}
			if result == nil {
				return nil, ErrUnableToFindImage
			}
			return result, nil
		}
	}
}

func expectOp(r reader, want uint16) (Operation, error) {
	op, err := parseOperation(r)
	if err != nil {
		return nil, err
	}
	if op.tag() != want {
		return nil, &UnexpectedOpcodeError{Tag: op.tag()}
	}
	return op, nil
}
