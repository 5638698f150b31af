// Package nmtree implements component C of the coalescing allocator: the
// lock-free free-block tree. It is a Natarajan–Mittal external binary
// search tree (non-blocking, CAS-only, no locks, no global epoch) keyed
// by (size, address) pairs, used by package coa to find a free block of
// at least a requested size and to locate a freed block's neighbors by
// address during coalescing (spec.md §4.2).
//
// Three permanent sentinel keys keep the tree non-empty and give every
// real-key seek a well-defined landing leaf, even when no real key
// qualifies. Node storage is drawn from package nodepool rather than the
// bare Go heap, echoing the reference design's "don't recurse into the
// allocator being built" node-allocator split (spec.md §4.3), even though
// in this Go port that recursion hazard doesn't literally apply — see
// DESIGN.md.
package nmtree

import "github.com/prataprc/coalesce/nodepool"

// defaultHugePageBytes sizes the tree's private node pool. 2MiB matches
// the reference design's huge-page refill unit (spec.md §4.3).
const defaultHugePageBytes = 2 * 1024 * 1024

// Tree is a lock-free external BST. The zero value is not usable; build
// one with New.
type Tree struct {
	root *node
	pool *nodepool.Pool[node]
}

// New builds an empty tree: a root wired to three permanent sentinel
// leaves, no real keys present yet.
func New() *Tree {
	t := &Tree{pool: nodepool.New[node](defaultHugePageBytes)}

	inf0 := t.newLeaf(ikey{inf: rankInf0})
	inf1 := t.newLeaf(ikey{inf: rankInf1})
	inf2 := t.newLeaf(ikey{inf: rankInf2})

	lower := t.newInternal(ikey{inf: rankInf0}, inf0, inf1)
	t.root = t.newInternal(ikey{inf: rankInf1}, lower, inf2)
	return t
}

func (t *Tree) newLeaf(k ikey) *node {
	n := t.pool.Get()
	*n = node{key: k, isLeaf: true}
	return n
}

func (t *Tree) newInternal(routeKey ikey, left, right *node) *node {
	n := t.pool.Get()
	*n = node{key: routeKey, isLeaf: false}
	n.left.Store(&edge{child: left})
	n.right.Store(&edge{child: right})
	return n
}

// seekRecord captures everything cleanup needs to splice a flagged leaf's
// sibling up to the nearest ancestor whose edge into the search path
// wasn't itself tagged (spec.md §4.2).
type seekRecord struct {
	ancestor     *node
	ancestorLeft bool
	ancestorEdge *edge

	parent     *node
	parentLeft bool
	parentEdge *edge

	leaf *node

	lastLeft    ikey
	hasLastLeft bool
}

// seek walks from the root to the leaf that would hold k (or the
// smallest-key leaf found by always preferring the side k compares
// less-or-equal to), tracking the ancestor/successor pair cleanup needs
// and the last routing key seen on a leftward step (lastLeft). lastLeft
// may be a sentinel key or the key of a leaf that has since been removed;
// every key in the right subtree of the node it came from is strictly
// greater than it, which is what RemoveLowerBound restarts from.
func (t *Tree) seek(k ikey) seekRecord {
	ancestor := t.root
	ancestorLeft := true
	ancestorEdge := ancestor.left.Load()

	parent := ancestorEdge.child
	parentLeft := goesLeft(k, parent.key)
	parentEdge := parent.edgeAt(parentLeft)
	leaf := parentEdge.child

	var lastLeft ikey
	hasLastLeft := false
	if parentLeft {
		lastLeft, hasLastLeft = parent.key, true
	}

	for !leaf.isLeaf {
		if !parentEdge.tagged {
			ancestor, ancestorLeft, ancestorEdge = parent, parentLeft, parentEdge
		}
		parent = leaf
		parentLeft = goesLeft(k, parent.key)
		parentEdge = parent.edgeAt(parentLeft)
		leaf = parentEdge.child
		if parentLeft {
			lastLeft, hasLastLeft = parent.key, true
		}
	}

	return seekRecord{
		ancestor: ancestor, ancestorLeft: ancestorLeft, ancestorEdge: ancestorEdge,
		parent: parent, parentLeft: parentLeft, parentEdge: parentEdge,
		leaf:        leaf,
		lastLeft:    lastLeft,
		hasLastLeft: hasLastLeft,
	}
}

// Insert adds key to the tree. It returns false if key is already
// present (keys are unique; coa never inserts the same (size, addr) pair
// twice since a given address is free or allocated, never both).
func (t *Tree) Insert(key Key) bool {
	ik := realKey(key)
	for {
		rec := t.seek(ik)
		if compareIkey(rec.leaf.key, ik) == 0 {
			return false
		}

		leaf := t.newLeaf(ik)
		var left, right *node
		if compareIkey(ik, rec.leaf.key) < 0 {
			left, right = leaf, rec.leaf
		} else {
			left, right = rec.leaf, leaf
		}
		internal := t.newInternal(left.key, left, right)

		newEdge := &edge{child: internal}
		if rec.parent.casEdgeAt(rec.parentLeft, rec.parentEdge, newEdge) {
			return true
		}

		cur := rec.parent.edgeAt(rec.parentLeft)
		if cur.child == rec.parentEdge.child && (cur.flagged || cur.tagged) {
			t.cleanup(rec)
		}
	}
}

// Remove deletes key from the tree. It returns false if key is absent.
func (t *Tree) Remove(key Key) bool {
	ik := realKey(key)
	for {
		rec := t.seek(ik)
		if compareIkey(rec.leaf.key, ik) != 0 {
			return false
		}

		flagged := &edge{child: rec.leaf, flagged: true}
		if rec.parent.casEdgeAt(rec.parentLeft, rec.parentEdge, flagged) {
			if t.cleanup(rec) {
				return true
			}
			for {
				rec2 := t.seek(ik)
				if rec2.leaf != rec.leaf {
					// Either this deletion was already spliced out by a
					// helper, or the slot now holds something else
					// entirely. Either way our leaf is gone.
					return true
				}
				if t.cleanup(rec2) {
					return true
				}
			}
		}

		cur := rec.parent.edgeAt(rec.parentLeft)
		if cur.child == rec.parentEdge.child && (cur.flagged || cur.tagged) {
			t.cleanup(rec)
		}
	}
}

// cleanup splices rec.parent's unflagged child (the sibling of the
// flagged leaf) up to rec.ancestor, physically removing both rec.parent
// and the flagged leaf from the tree (spec.md §4.2). It returns false
// when either CAS loses a race, leaving the caller to re-seek and retry.
func (t *Tree) cleanup(rec seekRecord) bool {
	siblingLeft := !rec.parentLeft
	sibling := rec.parent.edgeAt(siblingLeft)

	tagged := &edge{child: sibling.child, flagged: sibling.flagged, tagged: true}
	if !rec.parent.casEdgeAt(siblingLeft, sibling, tagged) {
		return false
	}

	spliced := &edge{child: sibling.child, flagged: sibling.flagged}
	return rec.ancestor.casEdgeAt(rec.ancestorLeft, rec.ancestorEdge, spliced)
}

// RemoveLowerBound removes and returns the smallest key present that is
// greater than or equal to probe. It returns false when no such key
// exists (spec.md §4.2's remove_lower_bound, used by coa to satisfy a
// size-class allocation from the smallest sufficiently large free
// block).
func (t *Tree) RemoveLowerBound(probe Key) (Key, bool) {
	cur := realKey(probe)
	for {
		if cur.inf != rankReal {
			return Key{}, false
		}
		rec := t.seek(cur)
		if rec.leaf.isLeaf && rec.leaf.key.inf == rankReal && compareIkey(rec.leaf.key, cur) >= 0 {
			found := rec.leaf.key.public()
			if t.Remove(found) {
				return found, true
			}
			// Lost a race with a concurrent remover of the same key;
			// retry from the same probe, the tree has moved on.
			continue
		}
		if !rec.hasLastLeft {
			return Key{}, false
		}
		// Probe just past lastLeft: no live key lies in [cur, lastLeft],
		// and probing lastLeft itself would route back into the same
		// left subtree.
		cur = rec.lastLeft
		if cur.inf == rankReal {
			cur.addr++
			if cur.addr < rec.lastLeft.addr {
				cur.size++
			}
		}
	}
}

// Contains reports whether key is currently present. It is a convenience
// for tests and callers that want a non-mutating membership check; coa's
// hot paths use Insert/Remove/RemoveLowerBound directly.
func (t *Tree) Contains(key Key) bool {
	rec := t.seek(realKey(key))
	return compareIkey(rec.leaf.key, realKey(key)) == 0
}
