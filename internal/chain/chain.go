// Package chain implements the per-row mutation chain spec.md §4.3 describes: an append-only
// singly linked list of timestamped change records, growing strictly at the tail via atomic
// compare-and-set, readable by any number of concurrent scanners without blocking the appender.
//
// Grounded on the *idea* of the teacher's engine/memrows rowImpl.previous version chain (a linked
// list of a row's prior versions) generalized to the lock-free tail-CAS discipline spec.md §4.3
// and §9 require, since the teacher's own chain is built under a table-wide sync.RWMutex rather
// than lock-free. The atomic-pointer idiom is grounded on ValentinKolb-dKV's pervasive use of
// go.uber.org/atomic for its replicated state machine.
package chain

import (
	uberatomic "go.uber.org/atomic"
)

// Kind distinguishes what a Node represents.
type Kind int

const (
	Update Kind = iota + 1
	Delete
	Reinsert
)

// Node is one published change record. Once linked into a Chain, a Node's fields never change;
// only the tail's next pointer is ever mutated, and only once (from nil to a fresh Node), via
// compare-and-set.
type Node struct {
	Timestamp int64
	Kind      Kind
	Payload   any // a rowset.ChangeList (Update), nil (Delete), or a relocated row (Reinsert)

	next uberatomic.Pointer[Node]
}

// Chain is the mutable head of a row's mutation list. The zero value is an empty chain.
type Chain struct {
	head uberatomic.Pointer[Node]
}

// Append publishes node at the tail of the chain. Concurrent appenders on the same chain
// serialize via CAS on the current tail's next pointer (or the chain's head, if empty); losers
// retry from the new tail. Node must not already be linked into any chain.
func (c *Chain) Append(node *Node) {
	for {
		head := c.head.Load()
		if head == nil {
			if c.head.CompareAndSwap(nil, node) {
				return
			}
			continue
		}
		tail := head
		for {
			next := tail.next.Load()
			if next == nil {
				break
			}
			tail = next
		}
		if tail.next.CompareAndSwap(nil, node) {
			return
		}
		// Someone else linked a node onto this tail between our walk and our CAS; retry the
		// walk from the (possibly longer) chain.
	}
}

// Head returns the first (oldest) node, or nil if the chain is empty.
func (c *Chain) Head() *Node {
	return c.head.Load()
}

// Next returns the node following n, or nil if n is the current tail.
func (n *Node) Next() *Node {
	return n.next.Load()
}

// Walk calls visit for each node from oldest to newest, stopping early if visit returns false.
func (c *Chain) Walk(visit func(*Node) bool) {
	for n := c.head.Load(); n != nil; n = n.next.Load() {
		if !visit(n) {
			return
		}
	}
}

// Last returns the most recently appended node, or nil if the chain is empty. Used to determine
// ghost/live status: a row is a ghost iff the chain is non-empty and Last().Kind == Delete.
func (c *Chain) Last() *Node {
	var last *Node
	c.Walk(func(n *Node) bool {
		last = n
		return true
	})
	return last
}
