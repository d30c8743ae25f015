// Package index implements the balanced term index: a self-balancing (AVL)
// binary search tree keyed by term, where each node holds the per-document
// occurrence counts for that term. One tree instance is kept per term class
// (words, persons, organizations).
package index

import "sync"

// FrequencyMap maps a document ID to the number of times a term occurs in
// that document.
type FrequencyMap map[string]int

// Clone returns an independent copy of the map.
func (fm FrequencyMap) Clone() FrequencyMap {
	out := make(FrequencyMap, len(fm))
	for docID, freq := range fm {
		out[docID] = freq
	}
	return out
}

// node is a single tree node. Children are exclusively owned; a nil child
// has height -1 by convention so a leaf has height 0.
type node struct {
	term   string
	docs   FrequencyMap
	left   *node
	right  *node
	height int
}

// TermIndex is an AVL tree mapping terms to their document frequency tables.
// All methods are safe for concurrent use; the tree assumes a single writer
// with any number of readers.
type TermIndex struct {
	mu   sync.RWMutex
	root *node
	size int // number of distinct terms
}

// NewTermIndex creates an empty term index.
func NewTermIndex() *TermIndex {
	return &TermIndex{}
}

// Insert records freq occurrences of term in the document docID. Inserting
// a term that is already present updates that node in place; inserting the
// same (term, docID) pair again adds freq to the existing count, so repeated
// single-occurrence inserts accumulate into a total occurrence count.
func (t *TermIndex) Insert(term, docID string, freq int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = t.insert(t.root, term, docID, freq)
}

// insert descends to the insertion point, then rebalances every node on the
// way back up so the AVL invariant holds after the call.
func (t *TermIndex) insert(n *node, term, docID string, freq int) *node {
	if n == nil {
		t.size++
		return &node{
			term: term,
			docs: FrequencyMap{docID: freq},
		}
	}

	switch {
	case term < n.term:
		n.left = t.insert(n.left, term, docID, freq)
	case term > n.term:
		n.right = t.insert(n.right, term, docID, freq)
	default:
		// Existing term: accumulate into the frequency map, no structural change.
		n.docs[docID] += freq
		return n
	}

	return rebalance(n)
}

// Contains reports whether term is present in the index.
func (t *TermIndex) Contains(term string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findNode(term) != nil
}

// Frequencies returns a copy of the document frequency map for term. A term
// that is not in the index yields an empty, non-nil map: absence is a valid
// result, not an error.
func (t *TermIndex) Frequencies(term string) FrequencyMap {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.findNode(term)
	if n == nil {
		return FrequencyMap{}
	}
	return n.docs.Clone()
}

// findNode runs a standard ordered binary search. Callers must hold t.mu.
func (t *TermIndex) findNode(term string) *node {
	n := t.root
	for n != nil {
		switch {
		case term < n.term:
			n = n.left
		case term > n.term:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Size returns the number of distinct terms in the index.
func (t *TermIndex) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// IsEmpty reports whether the index holds no terms.
func (t *TermIndex) IsEmpty() bool {
	return t.Size() == 0
}

// Clear removes every term; the index becomes structurally empty.
func (t *TermIndex) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = nil
	t.size = 0
}

// Clone returns a deep copy of the index: every node and every frequency map
// is duplicated, so the clone shares no mutable state with the original.
func (t *TermIndex) Clone() *TermIndex {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &TermIndex{
		root: cloneNode(t.root),
		size: t.size,
	}
}

func cloneNode(n *node) *node {
	if n == nil {
		return nil
	}
	return &node{
		term:   n.term,
		docs:   n.docs.Clone(),
		left:   cloneNode(n.left),
		right:  cloneNode(n.right),
		height: n.height,
	}
}

// Ascend visits every term in ascending order, calling fn with the term and
// its frequency map until fn returns false. The map passed to fn is the
// index's internal state and must not be modified or retained; use
// Frequencies for an owned copy.
func (t *TermIndex) Ascend(fn func(term string, docs FrequencyMap) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ascend(t.root, fn)
}

func ascend(n *node, fn func(term string, docs FrequencyMap) bool) bool {
	if n == nil {
		return true
	}
	if !ascend(n.left, fn) {
		return false
	}
	if !fn(n.term, n.docs) {
		return false
	}
	return ascend(n.right, fn)
}

// height returns the AVL height of n, with -1 for an absent subtree.
func height(n *node) int {
	if n == nil {
		return -1
	}
	return n.height
}

func updateHeight(n *node) {
	lh, rh := height(n.left), height(n.right)
	if lh > rh {
		n.height = lh + 1
	} else {
		n.height = rh + 1
	}
}

// rebalance restores the AVL invariant at n after an insertion in one of its
// subtrees. The four cases are the classic ones:
//
//	left-left   -> single right rotation
//	left-right  -> double rotation (left child left, then n right)
//	right-right -> single left rotation
//	right-left  -> double rotation (right child right, then n left)
func rebalance(n *node) *node {
	updateHeight(n)

	if height(n.left)-height(n.right) > 1 {
		if height(n.left.left) >= height(n.left.right) {
			return rotateRight(n)
		}
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	}

	if height(n.right)-height(n.left) > 1 {
		if height(n.right.right) >= height(n.right.left) {
			return rotateLeft(n)
		}
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}

	return n
}

// rotateRight lifts the left child over n. In-order ordering is preserved:
// the child's right subtree becomes n's left subtree.
func rotateRight(n *node) *node {
	child := n.left
	n.left = child.right
	child.right = n
	updateHeight(n)
	updateHeight(child)
	return child
}

// rotateLeft is the mirror of rotateRight.
func rotateLeft(n *node) *node {
	child := n.right
	n.right = child.left
	child.left = n
	updateHeight(n)
	updateHeight(child)
	return child
}
