package runtime

import "testing"

func TestChannelRegistryAssignsMonotonicIDs(t *testing.T) {
	reg := NewChannelRegistry()

	cap5 := 5
	id1 := reg.Create("i32", nil)
	id2 := reg.Create("string", &cap5)

	if id1 != 1 {
		t.Fatalf("first id = %d, want 1", id1)
	}
	if id2 != 2 {
		t.Fatalf("second id = %d, want 2", id2)
	}

	ch1, ok := reg.Get(id1)
	if !ok || ch1.Cap() != 0 {
		t.Fatalf("expected unbuffered channel under id %d", id1)
	}
	ch2, ok := reg.Get(id2)
	if !ok || ch2.Cap() != 5 {
		t.Fatalf("expected capacity-5 channel under id %d", id2)
	}
	if _, ok := reg.Get(999); ok {
		t.Fatalf("lookup of unknown id must fail")
	}
}

func TestChannelRegistrySharedState(t *testing.T) {
	reg := NewChannelRegistry()
	two := 2
	id := reg.Create("i32", &two)

	first, _ := reg.Get(id)
	second, _ := reg.Get(id)

	if result := first.TrySend(i32(11)); result != SendOk {
		t.Fatalf("send failed: %v", result)
	}
	if second.Len() != 1 {
		t.Fatalf("second handle does not observe the send, len %d", second.Len())
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !first.Closed() {
		t.Fatalf("first handle does not observe the close")
	}
}

func TestChannelRegistryRemoveDoesNotReuseIDs(t *testing.T) {
	reg := NewChannelRegistry()
	id1 := reg.Create("i32", nil)

	removed, ok := reg.Remove(id1)
	if !ok || removed == nil {
		t.Fatalf("expected to remove channel %d", id1)
	}
	if _, ok := reg.Get(id1); ok {
		t.Fatalf("removed channel still resolvable")
	}

	id2 := reg.Create("i32", nil)
	if id2 == id1 {
		t.Fatalf("id %d was reused", id1)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}
}

func TestChannelRegistryCloseAll(t *testing.T) {
	reg := NewChannelRegistry()
	one := 1
	idA := reg.Create("i32", &one)
	idB := reg.Create("i32", &one)

	chA, _ := reg.Get(idA)
	if err := chA.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reg.CloseAll()

	chB, _ := reg.Get(idB)
	if !chB.Closed() {
		t.Fatalf("CloseAll left channel %d open", idB)
	}
}

func TestLockRegistryCreateAndLen(t *testing.T) {
	reg := NewLockRegistry()
	if !reg.Empty() {
		t.Fatalf("fresh registry should be empty")
	}

	for n := uint64(1); n <= 3; n++ {
		id := reg.CreateLock()
		if id != n {
			t.Fatalf("lock id = %d, want %d", id, n)
		}
	}
	if reg.Len() != 3 {
		t.Fatalf("registry len = %d, want 3", reg.Len())
	}

	l, ok := reg.Get(2)
	if !ok || l == nil {
		t.Fatalf("expected lock under id 2")
	}
	if _, ok := reg.Get(42); ok {
		t.Fatalf("lookup of unknown lock id must fail")
	}

	if _, ok := reg.Remove(2); !ok {
		t.Fatalf("expected to remove lock 2")
	}
	if reg.Len() != 2 {
		t.Fatalf("registry len after remove = %d, want 2", reg.Len())
	}
}
