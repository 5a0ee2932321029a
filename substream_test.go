package nex

import "testing"

// drainOne simulates the connection handler's insert-then-drain sequence
// for one incoming reliable DATA packet and returns the sequences
// delivered to the RMC layer, in order.
func drainOne(q *ReliableRXQueue, sequence uint16) []uint16 {
	q.Insert(sequence, 0, 0, nil)

	var out []uint16
	for _, p := range q.Drain(sequence, 0, 0, nil) {
		out = append(out, p.sequence)
	}

	return out
}

func TestReliableRXQueueInOrderDelivery(t *testing.T) {
	q := NewReliableRXQueue(2)

	if got := drainOne(q, 2); len(got) != 1 || got[0] != 2 {
		t.Fatalf("drain(2) = %v, want [2]", got)
	}

	if got := drainOne(q, 3); len(got) != 1 || got[0] != 3 {
		t.Fatalf("drain(3) = %v, want [3]", got)
	}
}

func TestReliableRXQueueReordersOutOfOrderPackets(t *testing.T) {
	q := NewReliableRXQueue(2)

	var delivered []uint16

	// Sequences arrive out of order: 3, 4, 2.
	delivered = append(delivered, drainOne(q, 3)...)
	delivered = append(delivered, drainOne(q, 4)...)
	delivered = append(delivered, drainOne(q, 2)...)

	want := []uint16{2, 3, 4}
	if len(delivered) != len(want) {
		t.Fatalf("delivered = %v, want %v", delivered, want)
	}

	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("delivered = %v, want %v", delivered, want)
		}
	}
}

func TestReliableRXQueueSuppressesDuplicates(t *testing.T) {
	q := NewReliableRXQueue(2)

	var delivered []uint16
	delivered = append(delivered, drainOne(q, 2)...)
	delivered = append(delivered, drainOne(q, 3)...)
	delivered = append(delivered, drainOne(q, 3)...) // duplicate
	delivered = append(delivered, drainOne(q, 4)...)

	want := []uint16{2, 3, 4}
	if len(delivered) != len(want) {
		t.Fatalf("delivered = %v, want %v (duplicate sequence 3 must be dispatched at most once)", delivered, want)
	}

	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("delivered = %v, want %v", delivered, want)
		}
	}
}

func TestReliableRXQueueCounterNeverExceedsDispatched(t *testing.T) {
	q := NewReliableRXQueue(2)

	drainOne(q, 3)
	drainOne(q, 4)

	if q.Counter() != 2 {
		t.Fatalf("Counter() = %d, want 2 (nothing dispatched yet, sequence 2 still missing)", q.Counter())
	}

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 buffered out-of-order packets", q.Len())
	}

	drainOne(q, 2)

	if q.Counter() != 5 {
		t.Fatalf("Counter() = %d, want 5 after draining 2,3,4", q.Counter())
	}

	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after full drain", q.Len())
	}
}

func TestReliableRXQueueRejectsAlreadyDispatchedSequence(t *testing.T) {
	q := NewReliableRXQueue(2)

	drainOne(q, 2)
	drainOne(q, 3)

	// A late retransmit of 2 must be refused outright, not buffered as a
	// far-future sequence.
	if q.Insert(2, 0, 0, nil) {
		t.Fatal("Insert(2) accepted a sequence behind the counter")
	}

	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (stale duplicate must not be buffered)", q.Len())
	}
}

func TestReliableRXQueueWrapsAt16Bits(t *testing.T) {
	q := NewReliableRXQueue(0xFFFE)

	drainOne(q, 0xFFFE)
	delivered := drainOne(q, 0xFFFF)

	if len(delivered) != 1 || delivered[0] != 0xFFFF {
		t.Fatalf("drain(0xFFFF) = %v, want [0xFFFF]", delivered)
	}

	if q.Counter() != 0 {
		t.Fatalf("Counter() = %#x, want 0 after wrapping past 0xFFFF", q.Counter())
	}

	delivered = drainOne(q, 0)
	if len(delivered) != 1 || delivered[0] != 0 {
		t.Fatalf("drain(0) after wrap = %v, want [0]", delivered)
	}
}
