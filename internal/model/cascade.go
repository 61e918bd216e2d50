package model

import (
	"cmp"
	"slices"
)

// fargDelta describes how one indexed formal argument differs between the
// incumbent and the replacement element. new is nil when the argument was
// dropped.
type fargDelta struct {
	old, new FormalArgument

	nameChanged     bool
	subRangeChanged bool
	rangeChanged    bool
	typeChanged     bool
}

func diffFormalArg(old, new FormalArgument) *fargDelta {
	d := &fargDelta{old: old, new: new}
	if new == nil {
		return d
	}
	d.typeChanged = old.Type() != new.Type()
	d.nameChanged = old.Name() != new.Name()
	d.subRangeChanged = SubRangeOf(old) != SubRangeOf(new)
	if !d.typeChanged {
		d.rangeChanged = rangeDiffers(old, new)
	}
	return d
}

func (d *fargDelta) deleted() bool {
	return d.new == nil
}

func (d *fargDelta) changed() bool {
	return d.deleted() || d.typeChanged || d.nameChanged || d.subRangeChanged || d.rangeChanged
}

// rangeDiffers compares bounds or approved sets of two arguments of the
// same kind.
func rangeDiffers(old, new FormalArgument) bool {
	switch o := old.(type) {
	case *FloatFormalArg:
		n := new.(*FloatFormalArg)
		return o.min != n.min || o.max != n.max
	case *IntFormalArg:
		n := new.(*IntFormalArg)
		return o.min != n.min || o.max != n.max
	case *TimeStampFormalArg:
		n := new.(*TimeStampFormalArg)
		return o.min != n.min || o.max != n.max
	case ApprovedSetter:
		return !slices.Equal(o.approvedItems(), new.(ApprovedSetter).approvedItems())
	}
	return false
}

// vocabChange is the structural delta of one vocabulary element, handed to
// every dependent that refers to the element or to a changed argument.
type vocabChange struct {
	veID ID

	// newVE is the replacement element, nil when the element is removed.
	newVE VocabElement

	// deltas holds changed and dropped arguments, keyed by their ID.
	deltas map[ID]*fargDelta
}

func (c *vocabChange) removed() bool {
	return c.newVE == nil
}

func (c *vocabChange) refIDs() []ID {
	ids := make([]ID, 0, len(c.deltas)+1)
	ids = append(ids, c.veID)
	for id := range c.deltas {
		ids = append(ids, id)
	}
	return ids
}

// dependent is a registered data value, predicate or column predicate.
type dependent interface {
	// refs reports every element and argument ID the dependent's value tree
	// refers to.
	refs(add func(ID))

	// applyChange brings the dependent's value tree in line with c.
	applyChange(c *vocabChange)
}

type registration struct {
	seq int64
	ids []ID
}

// registry is the dependency index: element/argument ID → dependents
// referring to it. It is maintained on register, release and after every
// cascade, so a vocabulary edit finds its dependents without walking the
// whole object graph.
//
// Structure: map[ref_id]map[dependent]struct{}
type registry struct {
	seq    int64
	byRef  map[ID]map[dependent]struct{}
	refsOf map[dependent]*registration
}

func newRegistry() *registry {
	return &registry{
		byRef:  make(map[ID]map[dependent]struct{}),
		refsOf: make(map[dependent]*registration),
	}
}

func (r *registry) add(d dependent) {
	if _, ok := r.refsOf[d]; ok {
		return
	}
	r.seq++
	r.refsOf[d] = &registration{seq: r.seq}
	r.index(d)
}

// index records d under the IDs it currently refers to.
func (r *registry) index(d dependent) {
	reg := r.refsOf[d]
	seen := make(map[ID]bool)
	d.refs(func(id ID) {
		if !id.Valid() || seen[id] {
			return
		}
		seen[id] = true
		reg.ids = append(reg.ids, id)
		if r.byRef[id] == nil {
			r.byRef[id] = make(map[dependent]struct{})
		}
		r.byRef[id][d] = struct{}{}
	})
}

// unindex drops d from the reference sets but keeps its registration.
func (r *registry) unindex(d dependent) {
	reg := r.refsOf[d]
	for _, id := range reg.ids {
		delete(r.byRef[id], d)
		if len(r.byRef[id]) == 0 {
			delete(r.byRef, id)
		}
	}
	reg.ids = nil
}

// reindex refreshes d's references after its value tree changed. No-op for
// unregistered dependents.
func (r *registry) reindex(d dependent) {
	if _, ok := r.refsOf[d]; !ok {
		return
	}
	r.unindex(d)
	r.index(d)
}

func (r *registry) remove(d dependent) bool {
	if _, ok := r.refsOf[d]; !ok {
		return false
	}
	r.unindex(d)
	delete(r.refsOf, d)
	return true
}

func (r *registry) has(d dependent) bool {
	_, ok := r.refsOf[d]
	return ok
}

// affected returns the dependents referring to any of ids, in registration
// order.
func (r *registry) affected(ids []ID) []dependent {
	set := make(map[dependent]struct{})
	for _, id := range ids {
		for d := range r.byRef[id] {
			set[d] = struct{}{}
		}
	}
	out := make([]dependent, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b dependent) int {
		return cmp.Compare(r.refsOf[a].seq, r.refsOf[b].seq)
	})
	return out
}

func (r *registry) len() int {
	return len(r.refsOf)
}

// refCount returns how many dependents refer to id.
func (r *registry) refCount(id ID) int {
	return len(r.byRef[id])
}
