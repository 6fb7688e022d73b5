package structures

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrInvalidSchematic marks schematics that decode but are inconsistent.
var ErrInvalidSchematic = errors.New("invalid schematic")

// Schematic is a decoded structure.
type Schematic struct {
	Name string `cbor:"name" json:"name"`
	// Size is the bounding box as x, y, z.
	Size    [3]int   `cbor:"size" json:"size"`
	Palette []string `cbor:"palette" json:"palette"`
	Blocks  []Block  `cbor:"blocks" json:"blocks"`
}

// Block places one palette state at a position inside the bounding box.
type Block struct {
	Pos   [3]int `cbor:"pos" json:"pos"`
	State int    `cbor:"state" json:"state"`
}

// Empty is handed out when a pool has nothing left to draw.
var Empty = &Schematic{Name: "empty", Palette: []string{}, Blocks: []Block{}}

// Compression selects the frame wrapped around encoded schematics.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

var (
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// maxSchematicSize bounds decompressed input.
const maxSchematicSize = 64 << 20

// encMode produces deterministic output so equal schematics encode to equal
// bytes and therefore equal fingerprints.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("structures: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 24,
	}.DecMode()
	if err != nil {
		panic("structures: CBOR decoder initialization failed: " + err.Error())
	}
}

// Decode reads a schematic, unwrapping an LZ4 or zstd frame when present.
// The key names the schematic when the document has no name.
func Decode(key string, data []byte) (*Schematic, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, err
	}

	var s Schematic
	if err := decMode.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding schematic: %w", err)
	}
	if s.Name == "" {
		s.Name = key
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes s as CBOR wrapped in the requested frame.
func Encode(s *Schematic, c Compression) ([]byte, error) {
	raw, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schematic: %w", err)
	}

	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd compress: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression %d", c)
	}
}

func decompress(data []byte) ([]byte, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(data, lz4Magic):
		r = lz4.NewReader(bytes.NewReader(data))
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(maxSchematicSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		defer dec.Close()
		r = dec
	default:
		return data, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxSchematicSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing schematic: %w", err)
	}
	if len(raw) > maxSchematicSize {
		return nil, fmt.Errorf("schematic exceeds %d bytes", maxSchematicSize)
	}
	return raw, nil
}

// Validate checks that every block lies inside the bounding box and
// references a palette state.
func (s *Schematic) Validate() error {
	for i, d := range s.Size {
		if d <= 0 {
			return fmt.Errorf("%w: size[%d] is %d", ErrInvalidSchematic, i, d)
		}
	}
	for i, b := range s.Blocks {
		if b.State < 0 || b.State >= len(s.Palette) {
			return fmt.Errorf("%w: block %d references state %d of %d", ErrInvalidSchematic, i, b.State, len(s.Palette))
		}
		for axis, v := range b.Pos {
			if v < 0 || v >= s.Size[axis] {
				return fmt.Errorf("%w: block %d outside bounds at %v", ErrInvalidSchematic, i, b.Pos)
			}
		}
	}
	return nil
}
