// Implementation note:
// The resource directory is walked type-by-type rather than table-by-table because each type's
// resource table and name table live at independent offsets; visiting types in resource-table-offset
// order keeps the handful of seeks this requires monotonically forward where possible.

package mohawk

import (
	"io"
	"log"
	"os"
	"sort"

	"github.com/cyanworlds/mohawk/pict"
)

// Logger receives warnings for conditions spec.md treats as non-fatal: resource names with no
// matching resource-table entry, and file-table entries no resource ever references. It defaults to discarding output; callers that want to see warnings redirect it.
var Logger = log.New(io.Discard, "", 0)

var (
	iffMagic  = [4]byte{'M', 'H', 'W', 'K'}
	rsrcMagic = [4]byte{'R', 'S', 'R', 'C'}
)

const (
	rsrcVersion    = 0x0100
	rsrcCompaction = 0x0001
)

// TypeID is the 4-byte ASCII tag identifying a resource's kind (e.g. "PICT", "MSND"). Ordering is
// lexicographic by raw bytes.
type TypeID [4]byte

// String returns the tag's raw bytes interpreted as ASCII text.
func (t TypeID) String() string { return string(t[:]) }

// Less reports whether t sorts before o, lexicographically by byte.
func (t TypeID) Less(o TypeID) bool {
	for i := range t {
		if t[i] != o[i] {
			return t[i] < o[i]
		}
	}
	return false
}

// ResourceID uniquely identifies a resource within one TypeID's resource table.
type ResourceID uint16

// fileID is the archive's internal index into the file table. Resource-table entries on disk store
// fileID+1; parsing decrements it back before use and never exposes it to callers.
type fileID uint16

// File describes one entry of the archive's file table: a byte range plus its packaging metadata.
type File struct {
	Offset  uint32
	Size    uint32 // 24-bit on disk, widened here
	Flag    uint8
	Unknown uint16
}

// Resource is a named, typed byte range inside a Mohawk archive.
type Resource struct {
	ID      ResourceID
	Name    string
	HasName bool
	File    File

	h *sharedHandle
}

// Read returns a new, independently cursored Reader bounded to this resource's byte range, seeked to
// its start.
func (r *Resource) Read() *Reader {
	return r.h.newReader(int64(r.File.Offset), int64(r.File.Size))
}

// Mohawk is a parsed Mohawk archive: a read-only catalogue of resources bound to a shared handle on
// the underlying file.
type Mohawk struct {
	h    *sharedHandle
	size int64

	types map[TypeID]map[ResourceID]*Resource
}

// Open parses the Mohawk archive at the given path. The returned Mohawk must be closed with Close.
func Open(path string) (*Mohawk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

// New parses a Mohawk archive from an already-open io.ReadSeeker. The returned Mohawk must be closed
// with Close; closing it closes src if src implements io.Closer.
func New(src io.ReadSeeker) (*Mohawk, error) {
	h := newSharedHandle(src)
	r := h.newReader(0, -1)

	m := &Mohawk{h: h}
	err := m.parse(r)
	r.Close()
	if err != nil {
		h.release()
		return nil, err
	}
	return m, nil
}

// resourceDirLayout is the fixed-size prefix of the RSRC header, read in one field-by-field pass.
type resourceDirLayout struct {
	version               uint16
	compaction            uint16
	fileSize              uint32
	resourceDirOffset     uint32
	fileTableOffsetInDir  uint16
	fileTableSize         uint16
}

type typeTableEntry struct {
	tag                      TypeID
	resourceTableOffsetInDir uint16
	nameTableOffsetInDir     uint16
}

func (m *Mohawk) parse(r *Reader) error {
	magic, err := r.ReadFixed4()
	if err != nil {
		return err
	}
	if magic != iffMagic {
		return ErrIFFSignature
	}
	fileSizeMinus8, err := r.ReadU32()
	if err != nil {
		return err
	}
	totalFileSize := int64(fileSizeMinus8) + 8
	m.size = totalFileSize

	rsrcTag, err := r.ReadFixed4()
	if err != nil {
		return err
	}
	if rsrcTag != rsrcMagic {
		return ErrRSRCSignature
	}

	var rl resourceDirLayout
	if rl.version, err = r.ReadU16(); err != nil {
		return err
	}
	if rl.compaction, err = r.ReadU16(); err != nil {
		return err
	}
	if rl.fileSize, err = r.ReadU32(); err != nil {
		return err
	}
	if rl.resourceDirOffset, err = r.ReadU32(); err != nil {
		return err
	}
	if rl.fileTableOffsetInDir, err = r.ReadU16(); err != nil {
		return err
	}
	if rl.fileTableSize, err = r.ReadU16(); err != nil {
		return err
	}

	if rl.version != rsrcVersion {
		return &UnsupportedVersionError{Version: rl.version}
	}
	if rl.compaction != rsrcCompaction {
		return &UnsupportedCompactionError{Compaction: rl.compaction}
	}
	if int64(rl.fileSize) != totalFileSize {
		return ErrUncoherentFileSize
	}

	dirOffset := int64(rl.resourceDirOffset)

	if err := r.Seek(dirOffset); err != nil {
		return err
	}
	nameListOffsetInDir, err := r.ReadU16()
	if err != nil {
		return err
	}

	typeCount, err := r.ReadU16()
	if err != nil {
		return err
	}
	typeTable := make([]typeTableEntry, typeCount)
	for i := range typeTable {
		tag, err := r.ReadFixed4()
		if err != nil {
			return err
		}
		resTableOff, err := r.ReadU16()
		if err != nil {
			return err
		}
		nameTableOff, err := r.ReadU16()
		if err != nil {
			return err
		}
		typeTable[i] = typeTableEntry{tag: TypeID(tag), resourceTableOffsetInDir: resTableOff, nameTableOffsetInDir: nameTableOff}
	}

	// Sort by resource-table offset to minimize backward seeks (step 3).
	sort.Slice(typeTable, func(i, j int) bool {
		return typeTable[i].resourceTableOffsetInDir < typeTable[j].resourceTableOffsetInDir
	})

	// File table (step 4).
	if err := r.Seek(dirOffset + int64(rl.fileTableOffsetInDir)); err != nil {
		return err
	}
	fileCount, err := r.ReadU32()
	if err != nil {
		return err
	}
	if fileCount > 0xFFFF {
		return ErrTooBigFileTable
	}
	if int64(rl.fileTableSize) != 4+int64(fileCount)*10 {
		return ErrUncoherentFileTableSize
	}

	files := make(map[fileID]File, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		offset, err := r.ReadU32()
		if err != nil {
			return err
		}
		sizeAndFlag, err := r.ReadU32()
		if err != nil {
			return err
		}
		unknown, err := r.ReadU16()
		if err != nil {
			return err
		}
		files[fileID(i)] = File{
			Offset:  offset,
			Size:    sizeAndFlag >> 8,
			Flag:    uint8(sizeAndFlag),
			Unknown: unknown,
		}
	}

	m.types = make(map[TypeID]map[ResourceID]*Resource, len(typeTable))

	// Per-type resource/name tables (step 5).
	for _, te := range typeTable {
		resources, err := m.parseType(r, dirOffset, te, files, int64(nameListOffsetInDir))
		if err != nil {
			return err
		}
		m.types[te.tag] = resources
	}

	// Step 6: anything left in the file map was never referenced by a resource-table entry.
	for id := range files {
		Logger.Printf("mohawk: file id %d is never referenced by any resource table", id)
	}

	return nil
}

func (m *Mohawk) parseType(r *Reader, dirOffset int64, te typeTableEntry, files map[fileID]File, nameListOffsetInDir int64) (map[ResourceID]*Resource, error) {
	if err := r.Seek(dirOffset + int64(te.resourceTableOffsetInDir)); err != nil {
		return nil, err
	}
	resourceCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	type resourceEntry struct {
		id     ResourceID
		fileID fileID
	}
	entries := make([]resourceEntry, resourceCount)
	for i := range entries {
		rid, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		filePlusOne, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		entries[i] = resourceEntry{id: ResourceID(rid), fileID: fileID(filePlusOne - 1)}
	}

	if err := r.Seek(dirOffset + int64(te.nameTableOffsetInDir)); err != nil {
		return nil, err
	}
	nameCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	type nameEntry struct {
		nameOffset uint16
		resourceID ResourceID
	}
	nameEntries := make([]nameEntry, nameCount)
	for i := range nameEntries {
		nameOffset, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		rid, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		nameEntries[i] = nameEntry{nameOffset: nameOffset, resourceID: ResourceID(rid)}
	}

	// Sort by name offset to linearize the name-list reads (step 5b).
	sort.Slice(nameEntries, func(i, j int) bool {
		return nameEntries[i].nameOffset < nameEntries[j].nameOffset
	})

	names := make(map[ResourceID]string, len(nameEntries))
	for _, ne := range nameEntries {
		if err := r.Seek(dirOffset + nameListOffsetInDir + int64(ne.nameOffset)); err != nil {
			return nil, err
		}
		name, err := r.ReadCString()
		if err != nil {
			return nil, err
		}
		names[ne.resourceID] = name
	}

	resources := make(map[ResourceID]*Resource, len(entries))
	claimed := make(map[fileID]bool, len(entries))
	for _, e := range entries {
		f, ok := files[e.fileID]
		if !ok {
			return nil, &UnknownFileIDError{FileID: uint16(e.fileID)}
		}
		delete(files, e.fileID)
		claimed[e.fileID] = true

		name, hasName := names[e.id]
		delete(names, e.id)

		resources[e.id] = &Resource{
			ID:      e.id,
			Name:    name,
			HasName: hasName,
			File:    f,
			h:       m.h,
		}
	}

	for id := range names {
		Logger.Printf("mohawk: name table entry for resource %d in type %q has no matching resource", id, te.tag)
	}

	return resources, nil
}

// Types returns the set of TypeID values present in the archive, sorted lexicographically.
func (m *Mohawk) Types() []TypeID {
	out := make([]TypeID, 0, len(m.types))
	for t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Resources returns the resources catalogued under the given TypeID, sorted ascending by ResourceID.
// The second return value is false if the type is absent.
func (m *Mohawk) Resources(t TypeID) ([]*Resource, bool) {
	byID, ok := m.types[t]
	if !ok {
		return nil, false
	}
	out := make([]*Resource, 0, len(byID))
	for _, res := range byID {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, true
}

// Resource looks up a single resource by TypeID and ResourceID.
func (m *Mohawk) Resource(t TypeID, id ResourceID) (*Resource, bool) {
	byID, ok := m.types[t]
	if !ok {
		return nil, false
	}
	res, ok := byID[id]
	return res, ok
}

// Size returns the archive's total size in bytes, as declared by its IFF header.
func (m *Mohawk) Size() int64 {
	return m.size
}

// Close releases the Mohawk's reference to the underlying file. The file is only actually closed once
// every Reader cloned from this archive has also been closed.
func (m *Mohawk) Close() error {
	return m.h.release()
}

var pictTypeID = TypeID{'P', 'I', 'C', 'T'}

// GetPICT combines a PICT resource lookup with its decode. A nil PICT and nil error mean no such
// resource exists, mirroring this package's own Resource-lookup convention.
func (m *Mohawk) GetPICT(id ResourceID) (pict.PICT, error) {
	res, ok := m.Resource(pictTypeID, id)
	if !ok {
		return nil, nil
	}
	r := res.Read()
	defer r.Close()
	return pict.Decode(r)
}

// pictResourceIDs returns the sorted ResourceIDs of every PICT resource in the archive.
func (m *Mohawk) pictResourceIDs() []ResourceID {
	byID, ok := m.types[pictTypeID]
	if !ok {
		return nil
	}
	ids := make([]ResourceID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
