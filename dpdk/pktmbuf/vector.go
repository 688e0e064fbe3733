package pktmbuf

// Vector is a vector of packet buffers.
type Vector []*Packet

// Close releases the packets in order and clears the entries.
// Nil entries are skipped.
func (vec Vector) Close() error {
	for i, pkt := range vec {
		if pkt != nil {
			pkt.Close()
			vec[i] = nil
		}
	}
	return nil
}

// Len returns the number of non-nil entries.
func (vec Vector) Len() (n int) {
	for _, pkt := range vec {
		if pkt != nil {
			n++
		}
	}
	return n
}
