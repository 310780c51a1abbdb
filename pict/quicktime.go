package pict

import "unicode/utf8"

// imageDescriptionRawSize is the ImageDescription struct's fixed on-disk size, also used to account
// for CompressedQuickTime's trailing-padding check.
const imageDescriptionRawSize = 86

// ImageDescription describes a QuickTime compressed-image sample, embedded whole in a
// CompressedQuickTime opcode.
type ImageDescription struct {
	CompressorType            [4]byte
	Version, Revision         uint16
	Vendor                    [4]byte
	TemporalQuality           uint32
	SpatialQuality            uint32
	Width, Height             uint16
	HRes, VRes                uint32
	DataSize                  uint32
	FrameCount                uint16
	Name                      string
	Depth                     uint16
	ColorTableID              uint16
}

func parseImageDescription(r reader) (ImageDescription, error) {
	structSize, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	if structSize != imageDescriptionRawSize {
		return ImageDescription{}, ErrUnsupportedImageDescSize
	}

	compressorType, err := r.ReadFixed4()
	if err != nil {
		return ImageDescription{}, err
	}
	if err := skipReserved(r, 8, "ImageDescription.reserved"); err != nil {
		return ImageDescription{}, err
	}
	version, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}
	revision, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}
	vendor, err := r.ReadFixed4()
	if err != nil {
		return ImageDescription{}, err
	}
	temporalQuality, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	spatialQuality, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	width, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}
	height, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}
	hRes, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	vRes, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	dataSize, err := r.ReadU32()
	if err != nil {
		return ImageDescription{}, err
	}
	frameCount, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}

	nameLen, err := r.ReadU8()
	if err != nil {
		return ImageDescription{}, err
	}
	raw, err := r.ReadBytes(31)
	if err != nil {
		return ImageDescription{}, err
	}
	if int(nameLen) > len(raw) {
		return ImageDescription{}, ErrInvalidUTF8
	}
	// Trailing bytes beyond nameLen are conventionally zero; non-zero content is tolerated, not an
	// error, but is logged the same as any other reserved-field content.
	name, tail := raw[:nameLen], raw[nameLen:]
	for _, b := range tail {
		if b != 0 {
			Logger.Printf("pict: ImageDescription.name tail has non-zero content: % X", tail)
			break
		}
	}
	if !utf8.Valid(name) {
		return ImageDescription{}, ErrInvalidUTF8
	}

	depth, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}
	colorTableID, err := r.ReadU16()
	if err != nil {
		return ImageDescription{}, err
	}

	return ImageDescription{
		CompressorType:  compressorType,
		Version:         version,
		Revision:        revision,
		Vendor:          vendor,
		TemporalQuality: temporalQuality,
		SpatialQuality:  spatialQuality,
		Width:           width,
		Height:          height,
		HRes:            hRes,
		VRes:            vRes,
		DataSize:        dataSize,
		FrameCount:      frameCount,
		Name:            string(name),
		Depth:           depth,
		ColorTableID:    colorTableID,
	}, nil
}

// compressedQuickTimeFixedFields is the byte count of CompressedQuickTime's operands between its
// size field and its ImageDescription: version(2) + transformation(36) + matte_size(4) + matte
// rect(8) + mode(2) + source rect(8) + accuracy(4) + mask_size(4).
const compressedQuickTimeFixedFields = 2 + 36 + 4 + 8 + 2 + 8 + 4 + 4

// opCompressedQuickTime is the operand payload of the CompressedQuickTime opcode (0x8200).
type opCompressedQuickTime struct {
	Version         uint16
	Transformation  Matrix
	MatteRect       Rectangle
	Mode            uint16
	Source          Rectangle
	Accuracy        uint32
	Mask            []byte
	ImageDesc       ImageDescription
	Data            []byte
}

func (opCompressedQuickTime) tag() uint16 { return tagCompressedQuickTime }

func parseCompressedQuickTime(r reader) (opCompressedQuickTime, error) {
	size, err := r.ReadU32()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	if size%2 != 0 {
		return opCompressedQuickTime{}, ErrOddCompressedSize
	}

	version, err := r.ReadU16()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	transformation, err := parseMatrix(r)
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	matteSize, err := r.ReadU32()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	matteRect, err := parseRectangle(r)
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	mode, err := r.ReadU16()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	source, err := parseRectangle(r)
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	accuracy, err := r.ReadU32()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	maskSize, err := r.ReadU32()
	if err != nil {
		return opCompressedQuickTime{}, err
	}
	if matteSize != 0 {
		return opCompressedQuickTime{}, ErrMatteSizeNotZero
	}

	var mask []byte
	if maskSize > 0 {
		mask, err = r.ReadBytes(int(maskSize))
		if err != nil {
			return opCompressedQuickTime{}, err
		}
	}

	imgDesc, err := parseImageDescription(r)
	if err != nil {
		return opCompressedQuickTime{}, err
	}

	data, err := r.ReadBytes(int(imgDesc.DataSize))
	if err != nil {
		return opCompressedQuickTime{}, err
	}

	consumed := int64(compressedQuickTimeFixedFields) + int64(len(mask)) + imageDescriptionRawSize + int64(imgDesc.DataSize)
	diff := int64(size) - consumed
	switch {
	case diff == 1:
		if err := skipFiller(r); err != nil {
			return opCompressedQuickTime{}, err
		}
	case diff != 0:
		return opCompressedQuickTime{}, ErrTooMuchPadding
	}

	return opCompressedQuickTime{
		Version:        version,
		Transformation: transformation,
		MatteRect:      matteRect,
		Mode:           mode,
		Source:         source,
		Accuracy:       accuracy,
		Mask:           mask,
		ImageDesc:      imgDesc,
		Data:           data,
	}, nil
}
