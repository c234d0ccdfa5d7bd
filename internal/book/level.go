package book

import "github.com/shopspring/decimal"

// sentinel index meaning "no link".
const noLink = -1

// levelNode is one linked-list cell inside a PriceLevel's slab. PriceLevel
// owns the slab outright; the only other reference to a node is the
// order id -> slab index entry kept in PriceLevel.byID, which is how
// cancellation-by-id gets O(1) removal without an intrusive pointer cycle
// between Order and PriceLevel (see design notes on the slab-of-indices
// approach).
type levelNode struct {
	order      *Order
	prev, next int
}

// PriceLevel is the FIFO queue of resting orders at one price.
type PriceLevel struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
	Length int

	nodes []levelNode
	free  []int
	byID  map[int64]int
	head  int
	tail  int
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Volume: decimal.Zero,
		byID:   make(map[int64]int),
		head:   noLink,
		tail:   noLink,
	}
}

// alloc returns a free slab slot, growing the slab if necessary.
func (l *PriceLevel) alloc() int {
	if n := len(l.free); n > 0 {
		idx := l.free[n-1]
		l.free = l.free[:n-1]
		return idx
	}
	l.nodes = append(l.nodes, levelNode{})
	return len(l.nodes) - 1
}

// Add appends order at the tail. The caller is responsible for having set
// o.Timestamp beforehand — that timestamp is what establishes this order's
// time priority among others at the same price.
func (l *PriceLevel) Add(o *Order) {
	idx := l.alloc()
	l.nodes[idx] = levelNode{order: o, prev: l.tail, next: noLink}

	if l.tail == noLink {
		l.head = idx
	} else {
		l.nodes[l.tail].next = idx
	}
	l.tail = idx

	l.byID[o.ID] = idx
	l.Length++
	l.Volume = l.Volume.Add(o.Volume)
}

// Remove unlinks the order with the given id, if present. Returns the
// volume it carried and whether it was found. No-op (returns false) on a
// level that doesn't hold the id — including an already-empty level.
func (l *PriceLevel) Remove(id int64) (decimal.Decimal, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return decimal.Zero, false
	}
	node := l.nodes[idx]

	if node.prev != noLink {
		l.nodes[node.prev].next = node.next
	} else {
		l.head = node.next
	}
	if node.next != noLink {
		l.nodes[node.next].prev = node.prev
	} else {
		l.tail = node.prev
	}

	delete(l.byID, id)
	l.free = append(l.free, idx)
	l.Length--
	l.Volume = l.Volume.Sub(node.order.Volume)

	vol := node.order.Volume
	l.nodes[idx] = levelNode{}
	return vol, true
}

// Head returns the oldest (highest time-priority) order resting at this
// level, i.e. the next one to be matched.
func (l *PriceLevel) Head() (*Order, bool) {
	if l.head == noLink {
		return nil, false
	}
	return l.nodes[l.head].order, true
}

// Orders returns the resting orders at this level in FIFO order. It is not
// on the matching hot path.
func (l *PriceLevel) Orders() []*Order {
	out := make([]*Order, 0, l.Length)
	for idx := l.head; idx != noLink; idx = l.nodes[idx].next {
		out = append(out, l.nodes[idx].order)
	}
	return out
}
