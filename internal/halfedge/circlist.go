package halfedge

// CircList is a circular doubly-linked list of vertex indices, arena
// indexed per spec §9 instead of node pointers. Nodes are never actually
// freed back to an OS allocator; Remove splices a node out of its cycle
// and marks its slot free for a later insertion to reuse, and the whole
// arena is released with the list, matching the spec's requirement (Open
// Question 4) that the boundary list be let go of normally rather than
// deliberately leaked.
//
// Grounded on original_source/doc/Circ_list.hpp's circulator interface
// (a list exposes its head and lets a caller step forward/back), adapted
// to integer node indices into a slice-backed arena.
type CircList struct {
	nodes []circNode
	head  int // index into nodes of the current gate, or -1 if empty
}

type circNode struct {
	value      int
	prev, next int
	free       bool
}

// NewCircList creates an empty list.
func NewCircList() *CircList {
	return &CircList{head: noEdge}
}

// NewCircListFrom builds a list from values in order, with values[0] as
// the head.
func NewCircListFrom(values []int) *CircList {
	l := NewCircList()
	for _, v := range values {
		l.PushBack(v)
	}
	return l
}

func (l *CircList) alloc(value int) int {
	for i, n := range l.nodes {
		if n.free {
			l.nodes[i] = circNode{value: value}
			return i
		}
	}
	l.nodes = append(l.nodes, circNode{value: value})
	return len(l.nodes) - 1
}

// Empty reports whether the list has no elements.
func (l *CircList) Empty() bool {
	return l.head == noEdge
}

// Head returns the value at the current gate position.
func (l *CircList) Head() int {
	return l.nodes[l.head].value
}

// HeadNode returns the arena index of the current gate, for use with
// ValueAt/Next/Prev.
func (l *CircList) HeadNode() int {
	return l.head
}

// ValueAt returns the value stored at arena index n.
func (l *CircList) ValueAt(n int) int {
	return l.nodes[n].value
}

// Next returns the arena index following n.
func (l *CircList) Next(n int) int {
	return l.nodes[n].next
}

// Prev returns the arena index preceding n.
func (l *CircList) Prev(n int) int {
	return l.nodes[n].prev
}

// SetHead moves the gate to arena index n.
func (l *CircList) SetHead(n int) {
	l.head = n
}

// PushBack inserts value immediately before the current head (i.e. at the
// end of the cycle as currently oriented), or as the sole element if the
// list is empty.
func (l *CircList) PushBack(value int) int {
	n := l.alloc(value)
	if l.head == noEdge {
		l.nodes[n].prev = n
		l.nodes[n].next = n
		l.head = n
		return n
	}
	tail := l.nodes[l.head].prev
	l.nodes[tail].next = n
	l.nodes[n].prev = tail
	l.nodes[n].next = l.head
	l.nodes[l.head].prev = n
	return n
}

// InsertBefore inserts value immediately before arena index at, returning
// the new node's arena index.
func (l *CircList) InsertBefore(at int, value int) int {
	n := l.alloc(value)
	p := l.nodes[at].prev
	l.nodes[p].next = n
	l.nodes[n].prev = p
	l.nodes[n].next = at
	l.nodes[at].prev = n
	return n
}

// Remove splices node n out of its cycle. If n was the sole element the
// list becomes empty. If n was the head, the head moves to n's successor.
func (l *CircList) Remove(n int) {
	next, prev := l.nodes[n].next, l.nodes[n].prev
	if next == n {
		l.head = noEdge
	} else {
		l.nodes[prev].next = next
		l.nodes[next].prev = prev
		if l.head == n {
			l.head = next
		}
	}
	l.nodes[n] = circNode{free: true}
}

// Size counts the nodes reachable from the head; O(n), intended for tests
// and diagnostics rather than hot paths.
func (l *CircList) Size() int {
	if l.Empty() {
		return 0
	}
	count := 1
	for n := l.Next(l.head); n != l.head; n = l.Next(n) {
		count++
	}
	return count
}

// SplitAfter detaches the sub-cycle starting at "from" and ending at "to"
// (inclusive, walking forward via Next) out of l, closing the gap in l
// between from's predecessor and to's successor, and returns a new
// CircList containing exactly that sub-cycle (closed into its own ring).
// Used by the S-split loop surgery in spec §4.6.
func (l *CircList) SplitAfter(from, to int) *CircList {
	before := l.nodes[from].prev
	after := l.nodes[to].next

	if after == from {
		// The whole list is being extracted.
		l.head = noEdge
	} else {
		l.nodes[before].next = after
		l.nodes[after].prev = before
		if l.head == from || withinRange(l, from, to, l.head) {
			l.head = after
		}
	}

	sub := NewCircList()
	sub.nodes = make([]circNode, 0)
	// Rebuild the detached range as its own arena so the two lists never
	// alias each other's slices after this point.
	cur := from
	var prevIdx int
	first := true
	for {
		v := l.nodes[cur].value
		idx := sub.alloc(v)
		if first {
			sub.head = idx
			first = false
		} else {
			sub.nodes[prevIdx].next = idx
			sub.nodes[idx].prev = prevIdx
		}
		prevIdx = idx
		if cur == to {
			break
		}
		cur = l.nodes[cur].next
	}
	sub.nodes[prevIdx].next = sub.head
	sub.nodes[sub.head].prev = prevIdx
	return sub
}

// withinRange reports whether walking forward from "from" to "to" passes
// through node x, used to decide whether l's head needs to move after a
// split removes the range containing it.
func withinRange(l *CircList, from, to, x int) bool {
	for cur := from; ; cur = l.nodes[cur].next {
		if cur == x {
			return true
		}
		if cur == to {
			return false
		}
	}
}

// Splice inserts the entirety of other into l immediately before arena
// index at, in other's existing order, returning the arena index of
// other's former head within l. other must not be reused afterward.
func (l *CircList) Splice(at int, other *CircList) int {
	if other.Empty() {
		return noEdge
	}
	offset := len(l.nodes)
	for _, n := range other.nodes {
		l.nodes = append(l.nodes, n)
	}
	for i := offset; i < len(l.nodes); i++ {
		l.nodes[i].prev += offset
		l.nodes[i].next += offset
	}
	otherHead := other.head + offset
	otherTail := l.nodes[otherHead].prev

	p := l.nodes[at].prev
	l.nodes[p].next = otherHead
	l.nodes[otherHead].prev = p
	l.nodes[otherTail].next = at
	l.nodes[at].prev = otherTail
	return otherHead
}
