package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// Size is the length of a fingerprint in bytes.
const Size = 32

// Fingerprint is a BLAKE3-256 digest of a byte sequence.
type Fingerprint [Size]byte

// Zero is the fingerprint of nothing; it is never produced by hashing.
var Zero Fingerprint

// Of returns the fingerprint of data.
func Of(data []byte) Fingerprint {
	return Fingerprint(blake3.Sum256(data))
}

// FromReader hashes r until EOF.
func FromReader(r io.Reader) (Fingerprint, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return Zero, fmt.Errorf("reading content: %w", err)
	}
	return sum(h), nil
}

// File hashes the file at path on fs.
func File(fs afero.Fs, path string) (Fingerprint, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Zero, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	fp, err := FromReader(f)
	if err != nil {
		return Zero, fmt.Errorf("hashing %s: %w", path, err)
	}
	return fp, nil
}

// Parse decodes the hex form produced by String.
func Parse(s string) (Fingerprint, error) {
	var fp Fingerprint
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != Size {
		return Zero, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), Size)
	}
	copy(fp[:], decoded)
	return fp, nil
}

// String returns the lowercase hex encoding.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, for log output and file names.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Zero
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Builder folds a sequence of named streams into a single fingerprint.
//
// Every part is framed as name length, name, content, content length, so
// moving bytes between adjacent parts or renaming a part changes the result.
// Callers must add parts in a stable order.
type Builder struct {
	h     *blake3.Hasher
	parts int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{h: blake3.New()}
}

// Add hashes one named part.
func (b *Builder) Add(name string, r io.Reader) error {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(name)))
	_, _ = b.h.Write(length[:])
	_, _ = b.h.Write([]byte(name))

	n, err := io.Copy(b.h, r)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", name, err)
	}
	binary.BigEndian.PutUint64(length[:], uint64(n))
	_, _ = b.h.Write(length[:])
	b.parts++
	return nil
}

// Parts returns how many parts have been added.
func (b *Builder) Parts() int {
	return b.parts
}

// Sum returns the fingerprint of all parts added so far.
func (b *Builder) Sum() Fingerprint {
	return sum(b.h)
}

func sum(h *blake3.Hasher) Fingerprint {
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}
