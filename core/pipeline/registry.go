package pipeline

import (
	"sort"
	"sync"
	"time"

	"content-manager/core/fingerprint"
)

// Descriptor describes the published bundle of one owner.
type Descriptor struct {
	Owner       string                  `json:"owner"`
	URI         string                  `json:"uri"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Cached      bool                    `json:"cached"`
	BuiltAt     time.Time               `json:"builtAt"`
}

// Registry holds the currently published descriptors keyed by owner.
type Registry struct {
	descriptors sync.Map // owner -> Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Publish stores d, replacing any previous descriptor of the same owner.
func (r *Registry) Publish(d Descriptor) {
	r.descriptors.Store(d.Owner, d)
}

// Withdraw removes the descriptor of owner.
func (r *Registry) Withdraw(owner string) {
	r.descriptors.Delete(owner)
}

// Get returns the descriptor of owner.
func (r *Registry) Get(owner string) (Descriptor, bool) {
	v, ok := r.descriptors.Load(owner)
	if !ok {
		return Descriptor{}, false
	}
	return v.(Descriptor), true
}

// All returns every descriptor sorted by owner.
func (r *Registry) All() []Descriptor {
	out := []Descriptor{}
	r.descriptors.Range(func(_, v any) bool {
		out = append(out, v.(Descriptor))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}
