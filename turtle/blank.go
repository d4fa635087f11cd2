package turtle

import "sync/atomic"

// BlankNodes hands out blank node identifiers that are unique for the life
// of the allocator. One allocator is shared by every worker of a run; it is
// safe for concurrent use.
type BlankNodes struct {
	next atomic.Uint64
}

// NewBlankNodes returns an allocator starting at token 0.
func NewBlankNodes() *BlankNodes {
	return &BlankNodes{}
}

// New returns a fresh blank node.
func (b *BlankNodes) New() IRI {
	return IRI{Kind: KindBlank, Token: b.next.Add(1) - 1}
}

// Allocated is the number of blank nodes handed out so far.
func (b *BlankNodes) Allocated() uint64 {
	return b.next.Load()
}
