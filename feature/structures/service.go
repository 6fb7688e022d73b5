package structures

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"

	"content-manager/core/content"
	"content-manager/core/pool"

	"go.uber.org/zap"
)

// ErrUnknownPool is returned for pool names that are not declared.
var ErrUnknownPool = errors.New("unknown structure pool")

// PoolInfo summarizes one pool.
type PoolInfo struct {
	Name  string     `json:"name"`
	Owner string     `json:"owner"`
	Keys  []string   `json:"keys"`
	Stats pool.Stats `json:"stats"`
}

type loadedPool struct {
	owner string
	pool  *pool.Pool[*Schematic]
}

// generation is one installed set of pools with the sources backing them.
// inflight counts requests still reading from it.
type generation struct {
	pools    map[string]loadedPool
	sources  map[string]content.Source
	inflight sync.WaitGroup
}

// Service resolves schematics from the declared pools.
type Service struct {
	logger *zap.Logger

	mu       sync.RWMutex
	current  *generation
	retiring sync.WaitGroup
}

// NewService creates a service without pools. Call Load to install pools.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, current: &generation{pools: map[string]loadedPool{}}}
}

// Load builds pools from decls over sources and replaces the current ones.
// The service takes ownership of sources and closes the previous set once
// no request is using it anymore.
// Quarantined entries of the replaced pools get a fresh chance.
func (s *Service) Load(ctx context.Context, decls *Declarations, sources map[string]content.Source) error {
	pools := make(map[string]loadedPool, len(decls.Pools))
	indexes := make(map[string]*content.Index)

	for _, d := range decls.Pools {
		l := s.logger.With(zap.String("pool", d.Name), zap.String("owner", d.Owner))

		src, ok := sources[d.Owner]
		if !ok {
			l.Warn("Pool owner not found, its entries will be quarantined on first use")
		}
		idx, ok := indexes[d.Owner]
		if !ok && src != nil {
			var err error
			idx, err = content.BuildIndex(ctx, src, l)
			if err != nil {
				l.Warn("Failed to index pool owner", zap.Error(err))
			}
			indexes[d.Owner] = idx
		}

		entries := make([]pool.Entry, 0, len(d.Entries))
		for _, e := range d.Entries {
			entries = append(entries, pool.Entry{
				Key:    e.EffectiveKey(),
				Weight: e.EffectiveWeight(),
				Ref:    content.Ref{Source: src, Path: resolvePath(idx, e, l)},
			})
		}

		p, err := pool.New(d.Name, entries, Decode,
			pool.WithFallback(Empty),
			pool.WithLogger[*Schematic](s.logger))
		if err != nil {
			return fmt.Errorf("building pool %s: %w", d.Name, err)
		}
		pools[d.Name] = loadedPool{owner: d.Owner, pool: p}
	}

	s.mu.Lock()
	previous := s.current
	s.current = &generation{pools: pools, sources: sources}
	s.retiring.Add(1)
	s.mu.Unlock()

	// Requests already resolving against the previous pools keep their
	// sources until they finish.
	go func() {
		defer s.retiring.Done()
		if err := s.retire(previous); err != nil {
			s.logger.Warn("Failed to close previous structure sources", zap.Error(err))
		}
	}()
	s.logger.Info("Loaded structure pools", zap.Int("pools", len(pools)))
	return nil
}

func (s *Service) retire(g *generation) error {
	if g == nil {
		return nil
	}
	g.inflight.Wait()
	return content.CloseAll(g.sources)
}

// resolvePath maps a declaration to a path inside the owner's source.
// Unresolvable identifiers keep a best-guess path so the entry is
// quarantined on first load rather than rejected up front.
func resolvePath(idx *content.Index, e EntryDecl, l *zap.Logger) string {
	if e.Path != "" {
		return e.Path
	}
	id, err := content.ParseIdentifier(e.ID)
	if err != nil {
		l.Warn("Invalid entry identifier", zap.String("id", e.ID), zap.Error(err))
		return e.ID
	}
	if idx != nil {
		if entry, ok := idx.Get(content.Data, id); ok {
			return entry.FullPath
		}
	}
	l.Warn("Entry identifier not found in owner data", zap.String("id", e.ID))
	return path.Join("data", id.Namespace, id.Path)
}

// Close waits for in-flight requests and releases every source the service
// still holds, including those of replaced pools.
func (s *Service) Close() error {
	s.mu.Lock()
	g := s.current
	s.current = &generation{pools: map[string]loadedPool{}}
	s.mu.Unlock()

	err := s.retire(g)
	s.retiring.Wait()
	return err
}

// lookup returns the named pool and a release func the caller must invoke
// once it is done reading from the pool.
func (s *Service) lookup(name string) (loadedPool, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.current.pools[name]
	if !ok {
		return loadedPool{}, nil, fmt.Errorf("%w: %s", ErrUnknownPool, name)
	}
	g := s.current
	g.inflight.Add(1)
	return p, g.inflight.Done, nil
}

// List returns every pool sorted by name.
func (s *Service) List() []PoolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PoolInfo, 0, len(s.current.pools))
	for name, lp := range s.current.pools {
		out = append(out, PoolInfo{Name: name, Owner: lp.owner, Keys: lp.pool.Keys(), Stats: lp.pool.Stats()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Random draws a schematic from the named pool. ok is false when the pool
// is exhausted and the returned schematic is Empty.
func (s *Service) Random(ctx context.Context, name string, rng pool.Rand) (*Schematic, bool, error) {
	lp, release, err := s.lookup(name)
	if err != nil {
		return nil, false, err
	}
	defer release()
	sch, ok := lp.pool.ResolveRandom(ctx, rng)
	return sch, ok, nil
}

// ByKey resolves one entry of the named pool.
func (s *Service) ByKey(ctx context.Context, name, key string) (*Schematic, bool, error) {
	lp, release, err := s.lookup(name)
	if err != nil {
		return nil, false, err
	}
	defer release()
	sch, ok := lp.pool.ResolveByKey(ctx, key)
	return sch, ok, nil
}
