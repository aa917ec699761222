// Package anchor implements the MRS anchor and its registry, spec.md §4.6: the smallest
// operation identifier an MRS has ever submitted, registered under a stable name so an external
// write-ahead log can avoid reclaiming segments still needed to recover that MRS.
//
// Grounded on the teacher's engine.Register singleton pattern (a mutex-guarded
// map[string]Engine, populated once per engine name at init time), generalized here from
// "register one implementation per name, once" to "register and repeatedly lower one minimum
// per name."
package anchor

import "sync"

// OpID is an opaque, totally ordered operation identifier.
type OpID uint64

// Anchorer tracks the minimum OpID a single MRS has ever submitted and keeps a named Registry
// informed of it.
type Anchorer struct {
	name     string
	registry *Registry

	mu  sync.Mutex
	min OpID
	set bool
}

// New creates an Anchorer for the MRS named name ("MemRowSet-<id>" by convention), backed by
// registry.
func New(name string, registry *Registry) *Anchorer {
	return &Anchorer{name: name, registry: registry}
}

// AnchorIfMinimum records opID if it is smaller than (or the first) anchor this Anchorer has
// seen, and pushes the new minimum to the registry. Safe for concurrent use.
func (a *Anchorer) AnchorIfMinimum(opID OpID) {
	a.mu.Lock()
	if !a.set || opID < a.min {
		a.min = opID
		a.set = true
	}
	min := a.min
	a.mu.Unlock()

	if a.registry != nil {
		a.registry.update(a.name, min)
	}
}

// Min returns the current minimum anchored OpID and whether any OpID has been anchored yet.
func (a *Anchorer) Min() (OpID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.min, a.set
}

// Registry is an in-memory map of anchor name to its minimum live OpID. The teacher's
// distillation leaves the registry as an external collaborator the real write-ahead log would
// implement; this repository ships a concrete in-memory one so the MRS can be exercised end to
// end without a WAL.
type Registry struct {
	mu      sync.Mutex
	anchors map[string]OpID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{anchors: make(map[string]OpID)}
}

func (r *Registry) update(name string, opID OpID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchors[name] = opID
}

// MinAnchor returns name's current minimum anchored OpID and whether it has been set.
func (r *Registry) MinAnchor(name string) (OpID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opID, ok := r.anchors[name]
	return opID, ok
}

// GlobalMinimum returns the smallest anchor across every registered name, and whether the
// registry holds any anchors at all. This is what a WAL segment-reclamation policy would consult.
func (r *Registry) GlobalMinimum() (OpID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		min OpID
		set bool
	)
	for _, opID := range r.anchors {
		if !set || opID < min {
			min = opID
			set = true
		}
	}
	return min, set
}

// Names returns every registered anchor name, for debugging/inspection tooling.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.anchors))
	for name := range r.anchors {
		names = append(names, name)
	}
	return names
}
