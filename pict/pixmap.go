package pict

import "github.com/cyanworlds/mohawk/packbits"

const pixMapBaseAddr = 0x000000FF

// PixMap is QuickDraw's pixel-buffer descriptor, carrying bounds, row stride, pack type and pixel
// geometry. It precedes the pixel payload in a DirectBitsRect opcode.
type PixMap struct {
	RowBytes               uint16
	PointedIsPixMapRecord  bool
	Bounds                 Rectangle
	PackType               uint16
	PackSize               uint32
	HRes, VRes             uint32
	PixelType              uint16
	PixelSize              uint16
	ComponentsCount        uint16
	ComponentsSize         uint16
	PlaneOffset            uint32
	ColorTableAddr         uint32
}

func parsePixMap(r reader) (PixMap, error) {
	baseAddr, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	if baseAddr != pixMapBaseAddr {
		return PixMap{}, ErrInvalidBaseAddr
	}

	rowBytesAndFlag, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	rowBytes := rowBytesAndFlag & 0x3FFF
	if rowBytes%2 != 0 || rowBytes >= 0x4000 {
		return PixMap{}, ErrInvalidRowBytes
	}
	if rowBytesAndFlag&0x8000 != 0 {
		return PixMap{}, ErrReservedFlagBitSet
	}
	pointedIsPixMapRecord := rowBytesAndFlag&0x4000 != 0

	bounds, err := parseRectangle(r)
	if err != nil {
		return PixMap{}, err
	}

	version, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	if version != 0 {
		return PixMap{}, ErrUnsupportedPixMapVersion
	}

	packType, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	if packType >= 5 {
		return PixMap{}, ErrUnsupportedPackTypeRange
	}
	packSize, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	if packType == 0 && packSize != 0 {
		return PixMap{}, ErrPackSizeNotZero
	}

	hRes, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	vRes, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	pixelType, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	pixelSize, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	componentsCount, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	componentsSize, err := r.ReadU16()
	if err != nil {
		return PixMap{}, err
	}
	planeOffset, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	colorTableAddr, err := r.ReadU32()
	if err != nil {
		return PixMap{}, err
	}
	if err := skipReserved(r, 4, "PixMap.reserved"); err != nil {
		return PixMap{}, err
	}

	return PixMap{
		RowBytes:              rowBytes,
		PointedIsPixMapRecord: pointedIsPixMapRecord,
		Bounds:                bounds,
		PackType:              packType,
		PackSize:              packSize,
		HRes:                  hRes,
		VRes:                  vRes,
		PixelType:             pixelType,
		PixelSize:             pixelSize,
		ComponentsCount:       componentsCount,
		ComponentsSize:        componentsSize,
		PlaneOffset:           planeOffset,
		ColorTableAddr:        colorTableAddr,
	}, nil
}

// parsePixelPayload reads the DirectBitsRect pixel data described by pm, returning it as interleaved
// RGB24 bytes (pack_type == 4's planar rows are interleaved here) plus whether an odd total byte
// count was read (the caller must then consume one filler byte).
func parsePixelPayload(r reader, pm PixMap) ([]byte, bool, error) {
	height := int(pm.Bounds.Bottom) - int(pm.Bounds.Top)
	if height < 0 {
		height = 0
	}

	switch pm.PackType {
	case 1:
		size := int(pm.RowBytes) * height
		buf, err := r.ReadBytes(size)
		if err != nil {
			return nil, false, err
		}
		return buf, size%2 == 1, nil

	case 4:
		var out []byte
		oddBytesRead := false

		for row := 0; row < height; row++ {
			var lineSize int
			if pm.RowBytes > 250 {
				n, err := r.ReadU16()
				if err != nil {
					return nil, false, err
				}
				lineSize = int(n)
			} else {
				n, err := r.ReadU8()
				if err != nil {
					return nil, false, err
				}
				lineSize = int(n)
				oddBytesRead = !oddBytesRead
			}

			encoded, err := r.ReadBytes(lineSize)
			if err != nil {
				return nil, false, err
			}
			if lineSize%2 == 1 {
				oddBytesRead = !oddBytesRead
			}

			dec := packbits.NewDecoder()
			decoded := dec.Decode(encoded)
			if err := dec.Finalize(); err != nil {
				return nil, false, err
			}

			third := len(decoded) / 3
			red, rest := decoded[:third], decoded[third:]
			green, blue := rest[:third], rest[third:]
			for i := 0; i < third; i++ {
				out = append(out, red[i], green[i], blue[i])
			}
		}
		return out, oddBytesRead, nil

	default:
		return nil, false, ErrUnsupportedPackType
	}
}
