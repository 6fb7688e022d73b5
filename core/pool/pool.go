package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"content-manager/core/content"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrBroken is returned for entries that failed to load and are quarantined.
	ErrBroken = errors.New("pool entry is quarantined")
	// ErrUnknownKey is returned for keys that were never declared.
	ErrUnknownKey = errors.New("unknown pool key")
)

// Entry declares one candidate of a pool.
type Entry struct {
	// Key identifies the entry inside the pool.
	Key string
	// Weight is the relative chance of the entry in random draws.
	Weight int
	// Ref locates the entry's bytes.
	Ref content.Ref
}

// Decoder turns the raw bytes of an entry into a resource.
type Decoder[T any] func(key string, data []byte) (T, error)

// Rand is the source of randomness for weighted draws. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

type entry struct {
	Entry
	broken atomic.Bool
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Entries int `json:"entries"`
	Loaded  int `json:"loaded"`
	Broken  int `json:"broken"`
	Loads   int `json:"loads"`
}

// Pool is a weighted, lazily loading set of resources. It is safe for
// concurrent use.
type Pool[T any] struct {
	name     string
	entries  []*entry
	byKey    map[string]*entry
	decode   Decoder[T]
	fallback T
	logger   *zap.Logger

	decoded sync.Map // key -> T
	flight  singleflight.Group
	loads   atomic.Int64
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithFallback sets the value returned when no entry can be resolved.
func WithFallback[T any](v T) Option[T] {
	return func(p *Pool[T]) { p.fallback = v }
}

// WithLogger sets the logger used for quarantine and exhaustion warnings.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(p *Pool[T]) {
		if l != nil {
			p.logger = l
		}
	}
}

// New validates the declared entries and returns a pool over them. No entry
// is read until it is first resolved. An empty entry list is valid.
func New[T any](name string, entries []Entry, decode Decoder[T], opts ...Option[T]) (*Pool[T], error) {
	if decode == nil {
		return nil, fmt.Errorf("pool %s: decoder is required", name)
	}

	p := &Pool[T]{
		name:    name,
		entries: make([]*entry, 0, len(entries)),
		byKey:   make(map[string]*entry, len(entries)),
		decode:  decode,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("pool", name))

	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("pool %s: entry with empty key", name)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("pool %s: entry %s has negative weight %d", name, e.Key, e.Weight)
		}
		if _, dup := p.byKey[e.Key]; dup {
			return nil, fmt.Errorf("pool %s: duplicate entry %s", name, e.Key)
		}
		pe := &entry{Entry: e}
		p.entries = append(p.entries, pe)
		p.byKey[e.Key] = pe
	}
	return p, nil
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Keys returns the declared keys in declaration order.
func (p *Pool[T]) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	return keys
}

// Fallback returns the value handed out when the pool is exhausted.
func (p *Pool[T]) Fallback() T {
	return p.fallback
}

// Load resolves key, reading and decoding it on first use. It returns
// ErrUnknownKey for undeclared keys and an error wrapping ErrBroken for
// quarantined ones.
func (p *Pool[T]) Load(ctx context.Context, key string) (T, error) {
	e, ok := p.byKey[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return p.load(ctx, e)
}

// ResolveByKey returns the resource for key, or false when the key is
// unknown or quarantined.
func (p *Pool[T]) ResolveByKey(ctx context.Context, key string) (T, bool) {
	v, err := p.Load(ctx, key)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ResolveRandom draws a weighted random entry among those not quarantined.
// A candidate that fails to load is quarantined and the draw is repeated.
// When no candidate remains it logs a warning and returns the fallback and
// false. A nil rng uses the global source of math/rand/v2.
func (p *Pool[T]) ResolveRandom(ctx context.Context, rng Rand) (T, bool) {
	if rng == nil {
		rng = defaultRand{}
	}

	for {
		total := 0
		for _, e := range p.entries {
			if !e.broken.Load() {
				total += e.Weight
			}
		}
		if total <= 0 {
			p.logger.Warn("Pool has no loadable entries, using fallback")
			return p.fallback, false
		}

		roll := rng.IntN(total)
		var pick *entry
		for _, e := range p.entries {
			if e.broken.Load() {
				continue
			}
			roll -= e.Weight
			if roll < 0 {
				pick = e
				break
			}
		}
		if pick == nil {
			// Another caller quarantined an entry between the sum and the walk.
			continue
		}

		v, err := p.load(ctx, pick)
		if err == nil {
			return v, true
		}
	}
}

// Stats reports entry and load counts.
func (p *Pool[T]) Stats() Stats {
	s := Stats{Entries: len(p.entries), Loads: int(p.loads.Load())}
	for _, e := range p.entries {
		if e.broken.Load() {
			s.Broken++
		} else if _, ok := p.decoded.Load(e.Key); ok {
			s.Loaded++
		}
	}
	return s
}

func (p *Pool[T]) load(ctx context.Context, e *entry) (T, error) {
	var zero T

	// Fast path: already loaded or already quarantined.
	if v, ok := p.decoded.Load(e.Key); ok {
		return v.(T), nil
	}
	if e.broken.Load() {
		return zero, fmt.Errorf("%w: %s", ErrBroken, e.Key)
	}

	v, err, _ := p.flight.Do(e.Key, func() (interface{}, error) {
		// Double-check: a flight for this key may have finished since the fast path.
		if v, ok := p.decoded.Load(e.Key); ok {
			return v, nil
		}
		if e.broken.Load() {
			return nil, fmt.Errorf("%w: %s", ErrBroken, e.Key)
		}

		// Callers that share this flight must not see another caller's cancellation.
		res, err := p.read(context.WithoutCancel(ctx), e)
		if err != nil {
			if e.broken.CompareAndSwap(false, true) {
				p.logger.Warn("Quarantined pool entry",
					zap.String("key", e.Key),
					zap.String("path", e.Ref.Path),
					zap.Error(err))
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrBroken, e.Key, err)
		}
		p.decoded.Store(e.Key, res)
		return res, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// read fetches and decodes one entry. A panicking decoder counts as a decode
// failure so the entry is quarantined instead of taking the process down.
func (p *Pool[T]) read(ctx context.Context, e *entry) (res T, err error) {
	p.loads.Add(1)

	var zero T
	data, err := e.Ref.ReadAll(ctx)
	if err != nil {
		return zero, err
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = zero, fmt.Errorf("decoding %s: decoder panicked: %v", e.Ref.Path, r)
		}
	}()
	res, err = p.decode(e.Key, data)
	if err != nil {
		return zero, fmt.Errorf("decoding %s: %w", e.Ref.Path, err)
	}
	p.logger.Debug("Loaded pool entry", zap.String("key", e.Key), zap.Int("bytes", len(data)))
	return res, nil
}
