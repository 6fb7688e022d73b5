package pool_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"content-manager/core/content"
	"content-manager/core/pool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSource serves fixed bytes and counts opens. When gate is set, opens
// block until it is closed.
type fakeSource struct {
	files map[string]string
	gate  chan struct{}
	opens atomic.Int32
}

func (s *fakeSource) Entries(context.Context) ([]content.RawEntry, error) {
	var out []content.RawEntry
	for p, body := range s.files {
		out = append(out, content.RawEntry{Path: p, Size: int64(len(body))})
	}
	return out, nil
}

func (s *fakeSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	body, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, content.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader([]byte(body))), nil
}

func decodeString(_ string, data []byte) (string, error) {
	if string(data) == "garbage" {
		return "", errors.New("not a structure")
	}
	return string(data), nil
}

func entry(src content.Source, key string, weight int) pool.Entry {
	return pool.Entry{Key: key, Weight: weight, Ref: content.Ref{Source: src, Path: key + ".nbt"}}
}

func TestNew_Validation(t *testing.T) {
	src := &fakeSource{}

	_, err := pool.New("p", []pool.Entry{entry(src, "a", -1)}, decodeString)
	assert.ErrorContains(t, err, "negative weight")

	_, err = pool.New("p", []pool.Entry{entry(src, "a", 1), entry(src, "a", 2)}, decodeString)
	assert.ErrorContains(t, err, "duplicate")

	_, err = pool.New("p", []pool.Entry{{Weight: 1}}, decodeString)
	assert.ErrorContains(t, err, "empty key")

	_, err = pool.New[string]("p", nil, nil)
	assert.Error(t, err)

	p, err := pool.New("p", []pool.Entry{entry(src, "b", 1), entry(src, "a", 0)}, decodeString)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.Zero(t, src.opens.Load(), "construction must not read content")
}

func TestResolveRandom_WeightedDistribution(t *testing.T) {
	src := &fakeSource{files: map[string]string{"a.nbt": "A", "b.nbt": "B"}}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 3), entry(src, "b", 1)}, decodeString)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(42, 1024))
	counts := map[string]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		v, ok := p.ResolveRandom(context.Background(), rng)
		require.True(t, ok)
		counts[v]++
	}

	assert.InDelta(t, 0.75, float64(counts["A"])/draws, 0.075)
	assert.InDelta(t, 0.25, float64(counts["B"])/draws, 0.025)
	assert.Equal(t, int32(2), src.opens.Load(), "each entry is loaded once")
}

func TestResolveRandom_QuarantineRenormalizes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	// "a" is declared but missing from the source.
	src := &fakeSource{files: map[string]string{"b.nbt": "B"}}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 3), entry(src, "b", 1)}, decodeString,
		pool.WithLogger[string](zap.New(core)))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		v, ok := p.ResolveRandom(context.Background(), rng)
		require.True(t, ok)
		assert.Equal(t, "B", v)
	}

	stats := p.Stats()
	assert.Equal(t, pool.Stats{Entries: 2, Loaded: 1, Broken: 1, Loads: 2}, stats)
	assert.Equal(t, 1, logs.FilterMessage("Quarantined pool entry").Len())

	_, ok := p.ResolveByKey(context.Background(), "a")
	assert.False(t, ok)
}

func TestResolveRandom_DecodeFailureQuarantines(t *testing.T) {
	src := &fakeSource{files: map[string]string{"a.nbt": "garbage", "b.nbt": "B"}}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 1000), entry(src, "b", 1)}, decodeString)
	require.NoError(t, err)

	v, ok := p.ResolveRandom(context.Background(), rand.New(rand.NewPCG(1, 1)))
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	_, err = p.Load(context.Background(), "a")
	assert.True(t, errors.Is(err, pool.ErrBroken))
	assert.Equal(t, int32(2), src.opens.Load(), "quarantined entries are never retried")
}

func TestResolveRandom_DecoderPanicQuarantines(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{files: map[string]string{"a.nbt": "A", "b.nbt": "B"}}
	decode := func(key string, data []byte) (string, error) {
		if key == "a" {
			panic("palette index out of range")
		}
		return string(data), nil
	}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 1000), entry(src, "b", 1)}, decode,
		pool.WithLogger[string](zap.New(core)))
	require.NoError(t, err)

	var v string
	var ok bool
	require.NotPanics(t, func() {
		v, ok = p.ResolveRandom(context.Background(), rand.New(rand.NewPCG(1, 1)))
	})
	assert.True(t, ok)
	assert.Equal(t, "B", v)
	assert.Equal(t, 1, p.Stats().Broken)
	assert.Equal(t, 1, logs.FilterMessage("Quarantined pool entry").Len())

	_, ok = p.ResolveByKey(context.Background(), "a")
	assert.False(t, ok)

	_, err = p.Load(context.Background(), "a")
	assert.True(t, errors.Is(err, pool.ErrBroken))
}

func TestResolveRandom_Exhausted(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		p, err := pool.New[string]("empty", nil, decodeString, pool.WithFallback("air"))
		require.NoError(t, err)

		v, ok := p.ResolveRandom(context.Background(), nil)
		assert.False(t, ok)
		assert.Equal(t, "air", v)

		_, ok = p.ResolveByKey(context.Background(), "anything")
		assert.False(t, ok)
	})

	t.Run("AllBroken", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		src := &fakeSource{files: map[string]string{"b.nbt": "garbage"}}
		p, err := pool.New("p", []pool.Entry{entry(src, "a", 1), entry(src, "b", 1)}, decodeString,
			pool.WithFallback("air"), pool.WithLogger[string](zap.New(core)))
		require.NoError(t, err)

		v, ok := p.ResolveRandom(context.Background(), rand.New(rand.NewPCG(3, 3)))
		assert.False(t, ok)
		assert.Equal(t, "air", v)
		assert.Equal(t, 2, p.Stats().Broken)
		assert.Equal(t, 1, logs.FilterMessage("Pool has no loadable entries, using fallback").Len())

		for _, key := range []string{"a", "b"} {
			_, ok := p.ResolveByKey(context.Background(), key)
			assert.False(t, ok)
		}
	})

	t.Run("ZeroWeight", func(t *testing.T) {
		src := &fakeSource{files: map[string]string{"a.nbt": "A"}}
		p, err := pool.New("p", []pool.Entry{entry(src, "a", 0)}, decodeString)
		require.NoError(t, err)

		_, ok := p.ResolveRandom(context.Background(), nil)
		assert.False(t, ok)

		// Zero weight only excludes the entry from draws.
		v, ok := p.ResolveByKey(context.Background(), "a")
		assert.True(t, ok)
		assert.Equal(t, "A", v)
	})
}

func TestLoad_UnknownKey(t *testing.T) {
	p, err := pool.New[string]("p", nil, decodeString)
	require.NoError(t, err)

	_, err = p.Load(context.Background(), "ghost")
	assert.True(t, errors.Is(err, pool.ErrUnknownKey))
}

func TestResolveByKey_ConcurrentCallersShareOneLoad(t *testing.T) {
	src := &fakeSource{
		files: map[string]string{"a.nbt": "A"},
		gate:  make(chan struct{}),
	}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 1)}, decodeString)
	require.NoError(t, err)

	const callers = 50
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, ok := p.ResolveByKey(context.Background(), "a")
			assert.True(t, ok)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.opens.Load())
	assert.Equal(t, 1, p.Stats().Loads)
	for _, v := range results {
		assert.Equal(t, "A", v)
	}
}

func TestResolveRandom_ConcurrentQuarantineLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{files: map[string]string{"b.nbt": "B", "c.nbt": "C"}}
	p, err := pool.New("p",
		[]pool.Entry{entry(src, "a", 5), entry(src, "b", 1), entry(src, "c", 1)},
		decodeString, pool.WithLogger[string](zap.New(core)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, seed))
			for j := 0; j < 50; j++ {
				v, ok := p.ResolveRandom(context.Background(), rng)
				assert.True(t, ok)
				assert.Contains(t, []string{"B", "C"}, v)
			}
		}(uint64(i))
	}
	wg.Wait()

	assert.Equal(t, 1, logs.FilterMessage("Quarantined pool entry").Len())
	assert.Equal(t, 1, p.Stats().Broken)
}

func TestLoad_CancelledCallerDoesNotQuarantine(t *testing.T) {
	src := &fakeSource{files: map[string]string{"a.nbt": "A"}}
	p, err := pool.New("p", []pool.Entry{entry(src, "a", 1)}, decodeString)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := p.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	assert.Zero(t, p.Stats().Broken)
}
