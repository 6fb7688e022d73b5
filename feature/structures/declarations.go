package structures

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Declarations is the parsed pool declaration file.
type Declarations struct {
	Pools []PoolDecl `yaml:"pools"`
}

// PoolDecl declares one pool.
type PoolDecl struct {
	Name    string      `yaml:"name"`
	Owner   string      `yaml:"owner"`
	Entries []EntryDecl `yaml:"entries"`
}

// EntryDecl declares one pool entry. Exactly one of ID and Path is set.
type EntryDecl struct {
	// Key names the entry inside the pool; derived from ID or Path when empty.
	Key string `yaml:"key"`
	// ID is a "namespace:path" identifier looked up in the owner's data.
	ID string `yaml:"id"`
	// Path is a path inside the owner's source.
	Path string `yaml:"path"`
	// Weight is the relative draw chance; nil means 1.
	Weight *int `yaml:"weight"`
}

// EffectiveWeight returns the declared weight, defaulting to 1.
func (e EntryDecl) EffectiveWeight() int {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

// EffectiveKey returns Key, or the last segment of ID or Path without
// extensions.
func (e EntryDecl) EffectiveKey() string {
	if e.Key != "" {
		return e.Key
	}
	p := e.Path
	if e.ID != "" {
		_, p, _ = strings.Cut(e.ID, ":")
	}
	base := path.Base(p)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// LoadDeclarations reads and validates the declaration file. A missing file
// returns an error wrapping os.ErrNotExist.
func LoadDeclarations(fs afero.Fs, file string) (*Declarations, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fmt.Errorf("reading pool declarations: %w", err)
	}
	return ParseDeclarations(data)
}

// ParseDeclarations decodes and validates YAML declarations.
func ParseDeclarations(data []byte) (*Declarations, error) {
	var d Declarations
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing pool declarations: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks names, keys and weights.
func (d *Declarations) Validate() error {
	var errs []error
	names := make(map[string]struct{}, len(d.Pools))
	for i, p := range d.Pools {
		if p.Name == "" || strings.ContainsAny(p.Name, "/?#") {
			errs = append(errs, fmt.Errorf("pool %d: invalid name %q", i, p.Name))
			continue
		}
		if _, dup := names[p.Name]; dup {
			errs = append(errs, fmt.Errorf("pool %s: declared twice", p.Name))
			continue
		}
		names[p.Name] = struct{}{}

		if p.Owner == "" {
			errs = append(errs, fmt.Errorf("pool %s: owner is required", p.Name))
		}
		keys := make(map[string]struct{}, len(p.Entries))
		for j, e := range p.Entries {
			if (e.ID == "") == (e.Path == "") {
				errs = append(errs, fmt.Errorf("pool %s entry %d: set exactly one of id and path", p.Name, j))
				continue
			}
			key := e.EffectiveKey()
			if key == "" || strings.ContainsAny(key, "/?#") {
				errs = append(errs, fmt.Errorf("pool %s entry %d: invalid key %q", p.Name, j, key))
				continue
			}
			if _, dup := keys[key]; dup {
				errs = append(errs, fmt.Errorf("pool %s: duplicate key %s", p.Name, key))
				continue
			}
			keys[key] = struct{}{}
			if e.EffectiveWeight() < 0 {
				errs = append(errs, fmt.Errorf("pool %s entry %s: negative weight", p.Name, key))
			}
		}
	}
	return errors.Join(errs...)
}

// IsNotExist reports whether err is a missing declaration file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
