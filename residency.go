// residency.go: residency tier bounding strongly held entries
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"container/list"
	"sync"
)

// residencyTier keeps at most limit references strongly pinned, in
// recency order, and reclaims the coldest reference when admitting over
// budget. It stands in for memory pressure: a reference the tier lets go
// dereferences to nil and the next Get for its key recomputes.
//
// The tier is blind to entry state. It pins pending, completed and failed
// computations alike, and it never touches the store; mappings for
// reclaimed references linger until a sweep or a replacing install.
type residencyTier struct {
	mu    sync.Mutex
	limit int
	order *list.List // *tierNode, most recently used at front
	index map[string]*list.Element

	// onReclaim runs outside the tier lock for every reference the tier
	// lets go, so it may call back into the cache.
	onReclaim func(key string, ref *entryRef)
}

type tierNode struct {
	key string
	ref *entryRef
}

func newResidencyTier(limit int, onReclaim func(key string, ref *entryRef)) *residencyTier {
	if limit < 1 {
		limit = 1
	}
	return &residencyTier{
		limit:     limit,
		order:     list.New(),
		index:     make(map[string]*list.Element),
		onReclaim: onReclaim,
	}
}

// admit pins ref for key at the warm end, displacing any previous
// generation pinned under the same key, then sheds the coldest references
// until the tier is back within budget.
func (t *residencyTier) admit(key string, ref *entryRef) {
	t.mu.Lock()
	if el, ok := t.index[key]; ok {
		el.Value.(*tierNode).ref = ref
		t.order.MoveToFront(el)
	} else {
		t.index[key] = t.order.PushFront(&tierNode{key: key, ref: ref})
	}
	victims := t.shedLocked()
	t.mu.Unlock()

	t.release(victims)
}

// touch refreshes key's recency. Touching an unpinned key is a no-op.
func (t *residencyTier) touch(key string) {
	t.mu.Lock()
	if el, ok := t.index[key]; ok {
		t.order.MoveToFront(el)
	}
	t.mu.Unlock()
}

// forget unpins key if it still pins ref. A stale forget aimed at a
// reference that has since been replaced leaves the new generation alone.
func (t *residencyTier) forget(key string, ref *entryRef) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.index[key]
	if !ok || el.Value.(*tierNode).ref != ref {
		return false
	}
	t.order.Remove(el)
	delete(t.index, key)
	return true
}

// setCapacity changes the residency budget, shedding cold references
// immediately if the tier is over the new budget.
func (t *residencyTier) setCapacity(limit int) {
	if limit < 1 {
		limit = 1
	}
	t.mu.Lock()
	t.limit = limit
	victims := t.shedLocked()
	t.mu.Unlock()

	t.release(victims)
}

// capacity returns the current residency budget.
func (t *residencyTier) capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limit
}

// len returns the number of currently pinned references.
func (t *residencyTier) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// reset drops every pin without reclaiming the references. Callers that
// want the entries released reclaim them separately.
func (t *residencyTier) reset() {
	t.mu.Lock()
	t.order.Init()
	t.index = make(map[string]*list.Element)
	t.mu.Unlock()
}

// shedLocked removes cold nodes until within budget and returns them for
// release outside the lock. Callers must hold mu.
func (t *residencyTier) shedLocked() []*tierNode {
	var victims []*tierNode
	for t.order.Len() > t.limit {
		el := t.order.Back()
		node := el.Value.(*tierNode)
		t.order.Remove(el)
		delete(t.index, node.key)
		victims = append(victims, node)
	}
	return victims
}

// release runs the reclamation hook for shed nodes. Runs without mu held
// so the hook may re-enter the tier.
func (t *residencyTier) release(victims []*tierNode) {
	for _, v := range victims {
		t.onReclaim(v.key, v.ref)
	}
}
