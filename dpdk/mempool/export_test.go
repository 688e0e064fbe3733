package mempool

// NewRingForTest exposes the free-list ring to tests.
func NewRingForTest(capacity int) interface {
	Enqueue(v uint32) bool
	Dequeue() (uint32, bool)
	Count() int
} {
	return newRing(capacity)
}
