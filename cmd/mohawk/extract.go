package main

import (
	"fmt"
	"image/png"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cyanworlds/mohawk"
	"github.com/cyanworlds/mohawk/pict"
)

// UnsupportedTypeError indicates an extract request against a type tag this CLI knows nothing about.
type UnsupportedTypeError struct {
	TypeID mohawk.TypeID
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s", e.TypeID)
}

var (
	msndTypeID = mohawk.TypeID{'M', 'S', 'N', 'D'}
	pictTypeID = mohawk.TypeID{'P', 'I', 'C', 'T'}
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <path> <type_id> <resource_id>",
		Short: "Extract one resource from a Mohawk archive to standard output",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeID, err := parseTypeID(args[1])
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			resourceID, err := parseResourceID(args[2])
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			if err := runExtract(cmd.OutOrStdout(), args[0], typeID, resourceID); err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			return nil
		},
	}
}

func parseTypeID(arg string) (mohawk.TypeID, error) {
	if len(arg) != 4 {
		return mohawk.TypeID{}, fmt.Errorf("type id %q is not 4 ASCII characters", arg)
	}
	for i := 0; i < len(arg); i++ {
		if arg[i] >= 0x80 {
			return mohawk.TypeID{}, fmt.Errorf("type id %q is not 4 ASCII characters", arg)
		}
	}
	var id mohawk.TypeID
	copy(id[:], arg)
	return id, nil
}

func parseResourceID(arg string) (mohawk.ResourceID, error) {
	v, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("resource id %q: %w", arg, err)
	}
	return mohawk.ResourceID(v), nil
}

func runExtract(w io.Writer, path string, typeID mohawk.TypeID, resourceID mohawk.ResourceID) error {
	m, err := mohawk.Open(path)
	if err != nil {
		return err
	}
	defer m.Close()

	switch typeID {
	case msndTypeID:
		res, ok := m.Resource(typeID, resourceID)
		if !ok {
			return fmt.Errorf("resource %d not found in type %s", resourceID, typeID)
		}
		r := res.Read()
		defer r.Close()
		_, err := io.Copy(w, r)
		return err

	case pictTypeID:
		decoded, err := m.GetPICT(resourceID)
		if err != nil {
			return err
		}
		if decoded == nil {
			return fmt.Errorf("resource %d not found in type %s", resourceID, typeID)
		}
		return writePICT(w, decoded)

	default:
		return &UnsupportedTypeError{TypeID: typeID}
	}
}

// writePICT writes a decoded PICT to w in a format an external viewer can consume directly: a JPEG
// passthrough is written byte-for-byte, an RGB24 buffer is encoded to PNG. Spawning an actual
// windowing viewer is the external collaborator spec.md keeps out of this CLI's scope.
func writePICT(w io.Writer, p pict.PICT) error {
	switch v := p.(type) {
	case pict.JPEG:
		_, err := w.Write(v)
		return err
	case pict.RGB24:
		return png.Encode(w, v.Image())
	default:
		return fmt.Errorf("unhandled PICT variant %T", p)
	}
}
