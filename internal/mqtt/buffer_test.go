package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(4)
	got, dropped := rb.drainAll()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
}

func TestRingBufferKeepsOrder(t *testing.T) {
	rb := newRingBuffer(8)
	for i := 0; i < 3; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}
	if rb.len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.len())
	}

	got, _ := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, msg.payload[0])
		}
	}
	if rb.len() != 0 {
		t.Errorf("expected empty after drain, got %d", rb.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 7; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	got, dropped := rb.drainAll()
	if dropped != 4 {
		t.Errorf("expected 4 dropped, got %d", dropped)
	}
	want := []byte{4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].payload[0] != want[i] {
			t.Errorf("item %d: expected %d, got %d", i, want[i], got[i].payload[0])
		}
	}
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{payload: []byte{1}})
	rb.push(bufferedMsg{payload: []byte{2}})
	rb.push(bufferedMsg{payload: []byte{3}})
	rb.drainAll()

	rb.push(bufferedMsg{payload: []byte{9}})
	got, dropped := rb.drainAll()
	if dropped != 0 {
		t.Errorf("dropped count should reset after drain, got %d", dropped)
	}
	if len(got) != 1 || got[0].payload[0] != 9 {
		t.Errorf("unexpected contents after reuse: %+v", got)
	}
}
