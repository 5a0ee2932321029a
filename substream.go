package nex

import "sort"

// pendingDataPacket is one out-of-order reliable DATA packet waiting in
// a ReliableRXQueue for its sequence to become the next expected one.
type pendingDataPacket struct {
	sequence    uint16
	substreamID uint8
	fragmentID  uint8
	payload     []byte
}

// ReliableRXQueue holds out-of-order reliable DATA packets for one
// connection, sorted by sequence, and hands them back in order as the
// connection's RX counter advances. Sequence numbers wrap at 2^16; this
// queue's ordering compares sequences as distances from the current
// counter so the wrap doesn't break delivery order (invariant #1, #5 and
// the RX-counter-wraps-at-2^16 boundary in the testable properties).
type ReliableRXQueue struct {
	counter uint16
	items   []pendingDataPacket
}

// NewReliableRXQueue builds a queue expecting `start` as the first
// in-order sequence (2, per the CONNECT handler installing RX counter =
// 2 for the first reliable DATA packet after the handshake).
func NewReliableRXQueue(start uint16) *ReliableRXQueue {
	return &ReliableRXQueue{counter: start}
}

// Counter returns the next sequence expected in order.
func (q *ReliableRXQueue) Counter() uint16 {
	return q.counter
}

// distance returns how far ahead of the current counter a sequence is,
// treating the 16-bit sequence space as a ring centered on the counter.
func (q *ReliableRXQueue) distance(sequence uint16) uint16 {
	return sequence - q.counter
}

// halfSequenceSpace splits the 16-bit sequence ring: distances below it
// are "ahead of the counter", at or above it "behind" (an already
// dispatched sequence retransmitted late).
const halfSequenceSpace = 1 << 15

// Insert adds a packet to the queue. It returns false if the sequence is
// a duplicate of one already queued or already dispatched, in which case
// the caller should drop the packet without re-queuing it.
func (q *ReliableRXQueue) Insert(sequence uint16, substreamID, fragmentID uint8, payload []byte) bool {
	if sequence == q.counter {
		return true // will be picked up immediately by Drain
	}

	d := q.distance(sequence)
	if d >= halfSequenceSpace {
		return false
	}

	i := sort.Search(len(q.items), func(i int) bool {
		return q.distance(q.items[i].sequence) >= d
	})

	if i < len(q.items) && q.items[i].sequence == sequence {
		return false
	}

	q.items = append(q.items, pendingDataPacket{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = pendingDataPacket{
		sequence:    sequence,
		substreamID: substreamID,
		fragmentID:  fragmentID,
		payload:     payload,
	}

	return true
}

// Drain pops every packet at the front of the queue whose sequence
// equals the current counter, in order, advancing the counter (wrapping
// at 2^16) for each one. It does not itself pop the packet that
// triggered this call when that packet's sequence equals the counter
// exactly — callers pass that packet's payload through the returned
// slice's head by calling Insert first (which is a no-op for an exact
// counter match) and then Drain.
func (q *ReliableRXQueue) Drain(headSequence uint16, headSubstreamID, headFragmentID uint8, headPayload []byte) []pendingDataPacket {
	var out []pendingDataPacket

	if headSequence == q.counter {
		out = append(out, pendingDataPacket{
			sequence:    headSequence,
			substreamID: headSubstreamID,
			fragmentID:  headFragmentID,
			payload:     headPayload,
		})
		q.counter++
	}

	for len(q.items) > 0 && q.items[0].sequence == q.counter {
		out = append(out, q.items[0])
		q.items = q.items[1:]
		q.counter++
	}

	return out
}

// Len returns the number of out-of-order packets currently buffered.
func (q *ReliableRXQueue) Len() int {
	return len(q.items)
}
