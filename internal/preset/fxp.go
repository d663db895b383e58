package preset

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// ErrInvalidPreset is returned for files that are not VST 2.x program files.
var ErrInvalidPreset = errors.New("invalid preset file")

// Chunk magics, stored big-endian.
const (
	magicChunk      = "CcnK"
	magicParameters = "FxCk"
	magicOpaque     = "FPCh"
)

// programNameLength is the size of the fixed program name field.
const programNameLength = 28

// Bounds on data read from disk.
const (
	maxChunkSize  = 64 << 20
	maxParameters = 1 << 16
)

// Format is the way a program file stores plugin state.
type Format int

const (
	// FormatParameters stores one normalized value per parameter.
	FormatParameters Format = iota
	// FormatChunk stores an opaque blob only the plugin understands.
	FormatChunk
)

// String returns the format's magic.
func (f Format) String() string {
	if f == FormatChunk {
		return magicOpaque
	}

	return magicParameters
}

// Program is a decoded program file.
type Program struct {
	Format     Format
	Version    int32
	PluginID   pluginid.ID
	FxVersion  int32
	Name       string
	Parameters []float32
	Chunk      []byte
}

// header is the fixed part shared by both formats.
type header struct {
	ChunkMagic [4]byte
	ByteSize   int32
	FxMagic    [4]byte
	Version    int32
	FxID       uint32
	FxVersion  int32
	NumParams  int32
	Name       [programNameLength]byte
}

// Decode reads a program file.
func Decode(r io.Reader) (*Program, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errors.Wrapf(ErrInvalidPreset, "reading header: %v", err)
	}

	if string(h.ChunkMagic[:]) != magicChunk {
		return nil, errors.Wrapf(ErrInvalidPreset, "bad chunk magic %q", h.ChunkMagic[:])
	}

	if h.NumParams < 0 {
		return nil, errors.Wrapf(ErrInvalidPreset, "negative parameter count %d", h.NumParams)
	}

	prog := &Program{
		Version:   h.Version,
		PluginID:  pluginid.FromValue(h.FxID),
		FxVersion: h.FxVersion,
		Name:      string(bytes.TrimRight(h.Name[:], "\x00")),
	}

	switch string(h.FxMagic[:]) {
	case magicParameters:
		prog.Format = FormatParameters

		// ByteSize counts everything after itself.
		declared := int64(h.ByteSize) - int64(binary.Size(h)) + 8
		if h.NumParams > maxParameters || 4*int64(h.NumParams) > declared {
			return nil, errors.Wrapf(ErrInvalidPreset,
				"parameter count %d does not fit a %d byte program", h.NumParams, h.ByteSize)
		}

		prog.Parameters = make([]float32, h.NumParams)

		if err := binary.Read(r, binary.BigEndian, prog.Parameters); err != nil {
			return nil, errors.Wrapf(ErrInvalidPreset, "reading %d parameters: %v", h.NumParams, err)
		}

		for i, v := range prog.Parameters {
			if math.IsNaN(float64(v)) {
				return nil, errors.Wrapf(ErrInvalidPreset, "parameter %d is not a number", i)
			}
		}
	case magicOpaque:
		prog.Format = FormatChunk

		var size int32
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return nil, errors.Wrapf(ErrInvalidPreset, "reading chunk size: %v", err)
		}

		if size < 0 || size > maxChunkSize {
			return nil, errors.Wrapf(ErrInvalidPreset, "chunk size %d out of range", size)
		}

		prog.Chunk = make([]byte, size)
		if _, err := io.ReadFull(r, prog.Chunk); err != nil {
			return nil, errors.Wrapf(ErrInvalidPreset, "reading %d byte chunk: %v", size, err)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidPreset, "unknown program format %q", h.FxMagic[:])
	}

	return prog, nil
}

// Encode writes p as a program file.
func (p *Program) Encode(w io.Writer) error {
	h := header{
		Version:   p.Version,
		FxID:      p.PluginID.Value,
		FxVersion: p.FxVersion,
	}

	copy(h.ChunkMagic[:], magicChunk)
	copy(h.FxMagic[:], p.Format.String())
	copy(h.Name[:programNameLength-1], p.Name)

	var body any

	switch p.Format {
	case FormatChunk:
		h.ByteSize = int32(binary.Size(h) - 8 + 4 + len(p.Chunk))
		body = p.Chunk
	default:
		h.NumParams = int32(len(p.Parameters))
		h.ByteSize = int32(binary.Size(h) - 8 + 4*len(p.Parameters))
		body = p.Parameters
	}

	if err := binary.Write(w, binary.BigEndian, &h); err != nil {
		return errors.Wrap(err, "writing header")
	}

	if p.Format == FormatChunk {
		if err := binary.Write(w, binary.BigEndian, int32(len(p.Chunk))); err != nil {
			return errors.Wrap(err, "writing chunk size")
		}
	}

	return errors.Wrap(binary.Write(w, binary.BigEndian, body), "writing program data")
}
