package dict

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// FormatError reports a fatal, load-time data-format problem: blob
// region sizes disagreeing, a version mismatch, or a truncated file.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("dict: format error: %s", e.Reason) }

func errShort(region string) error {
	return &FormatError{Reason: fmt.Sprintf("%s: truncated", region)}
}

// subDict is one of the system or unknown-character dictionaries: a
// double-array trie region (handed to the caller as raw base/check
// arrays, since building the dat.Trie itself would require this
// package to import dat), a token table, and a feature pool.
type subDict struct {
	LeftContexts  uint16
	RightContexts uint16
	DATBase       []int32
	DATCheck      []int32
	Tokens        TokenTable
	Features      featurePool
}

// header is the fixed prefix of a system/unknown DAT file.
type header struct {
	LeftContexts  uint32
	RightContexts uint32
	DATCells      uint32
	TokenCount    uint32
	FeaturePoolSz uint32
}

const headerSize = 4 * 5

func parseSubDict(b []byte) (subDict, error) {
	if len(b) < headerSize {
		return subDict{}, errShort("sub-dictionary header")
	}
	var h header
	h.LeftContexts = binary.LittleEndian.Uint32(b[0:4])
	h.RightContexts = binary.LittleEndian.Uint32(b[4:8])
	h.DATCells = binary.LittleEndian.Uint32(b[8:12])
	h.TokenCount = binary.LittleEndian.Uint32(b[12:16])
	h.FeaturePoolSz = binary.LittleEndian.Uint32(b[16:20])

	off := headerSize
	datSize := int(h.DATCells) * 8 // base+check, 4 bytes each
	if off+datSize > len(b) {
		return subDict{}, errShort("DAT region")
	}
	datBase := make([]int32, h.DATCells)
	datCheck := make([]int32, h.DATCells)
	for i := 0; i < int(h.DATCells); i++ {
		cellOff := off + i*8
		datBase[i] = int32(binary.LittleEndian.Uint32(b[cellOff : cellOff+4]))
		datCheck[i] = int32(binary.LittleEndian.Uint32(b[cellOff+4 : cellOff+8]))
	}
	off += datSize

	tokenSize := int(h.TokenCount) * formatTokenSize
	if off+tokenSize > len(b) {
		return subDict{}, errShort("token region")
	}
	tokens, err := parseTokenTable(b[off : off+tokenSize])
	if err != nil {
		return subDict{}, err
	}
	off += tokenSize

	if off+int(h.FeaturePoolSz) > len(b) {
		return subDict{}, errShort("feature pool")
	}
	features := newFeaturePool(b[off : off+int(h.FeaturePoolSz)])

	return subDict{
		LeftContexts:  uint16(h.LeftContexts),
		RightContexts: uint16(h.RightContexts),
		DATBase:       datBase,
		DATCheck:      datCheck,
		Tokens:        tokens,
		Features:      features,
	}, nil
}

// Blob is the read-only, memory-mapped aggregate of the system
// dictionary, unknown-character dictionary, connection-cost matrix,
// and character-category table. Blob is safe for concurrent use by
// multiple tokenizer sessions: it never mutates after load.
type Blob struct {
	Sys  subDict
	Unk  subDict
	Char *CharacterClassifier
	Mat  Matrix

	sysRegion mmap.MMap // nil if loaded from an in-memory byte slice
	unkRegion mmap.MMap
	sysFile   *os.File
	unkFile   *os.File
}

// DATArrays is the raw base/check pair for one sub-dictionary's
// double-array trie, handed to the caller (internal/morph) to build a
// dat.Trie. Keeping DAT assembly outside this package avoids a
// dict -> dat import cycle while letting dict own the memory-mapped
// byte ownership.
type DATArrays struct {
	Base, Check []int32
}

// Regions bundles the raw DAT arrays for the system and unknown
// dictionaries.
type Regions struct {
	SysDAT, UnkDAT DATArrays
}

// Open memory-maps the four dictionary files and validates the
// connection-cost matrix against the system dictionary's context
// counts, per the blob invariant.
func Open(sysPath, unkPath, matrixPath, charPath string) (*Blob, Regions, error) {
	sysBytes, sysFile, err := mmapFile(sysPath)
	if err != nil {
		return nil, Regions{}, err
	}
	unkBytes, unkFile, err := mmapFile(unkPath)
	if err != nil {
		sysFile.Close()
		return nil, Regions{}, err
	}
	matBytes, err := os.ReadFile(matrixPath)
	if err != nil {
		return nil, Regions{}, err
	}
	charBytes, err := os.ReadFile(charPath)
	if err != nil {
		return nil, Regions{}, err
	}

	blob, regions, err := load(sysBytes, unkBytes, matBytes, charBytes)
	if err != nil {
		sysFile.Close()
		unkFile.Close()
		return nil, Regions{}, err
	}
	blob.sysRegion = sysBytes
	blob.unkRegion = unkBytes
	blob.sysFile = sysFile
	blob.unkFile = unkFile
	return blob, regions, nil
}

func mmapFile(path string) (mmap.MMap, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return m, f, nil
}

// Load builds a Blob from in-memory byte slices, for callers that
// have already loaded (or embedded) the dictionary files.
func Load(sysBytes, unkBytes, matrixBytes, charBytes []byte) (*Blob, Regions, error) {
	return load(sysBytes, unkBytes, matrixBytes, charBytes)
}

func load(sysBytes, unkBytes, matrixBytes, charBytes []byte) (*Blob, Regions, error) {
	sys, err := parseSubDict(sysBytes)
	if err != nil {
		return nil, Regions{}, fmt.Errorf("dict: system dictionary: %w", err)
	}
	unk, err := parseSubDict(unkBytes)
	if err != nil {
		return nil, Regions{}, fmt.Errorf("dict: unknown-character dictionary: %w", err)
	}
	mat, err := parseMatrix(matrixBytes)
	if err != nil {
		return nil, Regions{}, fmt.Errorf("dict: matrix: %w", err)
	}
	if mat.LeftEdges() != sys.LeftContexts || mat.RightEdges() != sys.RightContexts {
		return nil, Regions{}, &FormatError{Reason: fmt.Sprintf(
			"matrix dimensions (%d,%d) disagree with system dictionary context counts (%d,%d)",
			mat.LeftEdges(), mat.RightEdges(), sys.LeftContexts, sys.RightContexts)}
	}
	cc, err := ParseCharacterClassifier(charBytes)
	if err != nil {
		return nil, Regions{}, fmt.Errorf("dict: character classifier: %w", err)
	}
	return &Blob{Sys: sys, Unk: unk, Char: cc, Mat: mat},
		Regions{
			SysDAT: DATArrays{Base: sys.DATBase, Check: sys.DATCheck},
			UnkDAT: DATArrays{Base: unk.DATBase, Check: unk.DATCheck},
		}, nil
}

// Close unmaps the blob's memory-mapped regions and closes their
// underlying files. A Blob built via Load (rather than Open) need not
// be closed.
func (b *Blob) Close() error {
	var errs []error
	if b.sysRegion != nil {
		if err := b.sysRegion.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.unkRegion != nil {
		if err := b.unkRegion.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.sysFile != nil {
		if err := b.sysFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.unkFile != nil {
		if err := b.unkFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("dict: close blob: %w", errors.Join(errs...))
	}
	return nil
}

// FeatureGet returns the feature string at offset in the system
// dictionary's feature pool.
func (b *Blob) FeatureGet(offset uint32) string { return b.Sys.Features.Get(offset) }

// UnkFeatureGet returns the feature string at offset in the unknown
// dictionary's feature pool.
func (b *Blob) UnkFeatureGet(offset uint32) string { return b.Unk.Features.Get(offset) }
