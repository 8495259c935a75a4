package store

import (
	"fmt"
	"testing"
)

func TestClickStore_Basic(t *testing.T) {
	store := NewClickStore(100, 0.001)

	if store.Has("uuid-1") {
		t.Error("Empty store should not have any stations")
	}

	if store.Size() != 0 {
		t.Errorf("Empty store size should be 0, got %d", store.Size())
	}

	store.Add("uuid-1")
	if !store.Has("uuid-1") {
		t.Error("Store should have uuid-1 after adding")
	}

	if store.Size() != 1 {
		t.Errorf("Store size should be 1 after adding one station, got %d", store.Size())
	}

	// Duplicate addition is a no-op
	store.Add("uuid-1")
	if store.Size() != 1 {
		t.Errorf("Store size should still be 1 after adding duplicate, got %d", store.Size())
	}

	store.Add("uuid-2")
	store.Add("uuid-3")

	if store.Size() != 3 {
		t.Errorf("Store size should be 3 after adding three stations, got %d", store.Size())
	}

	if !store.Has("uuid-2") || !store.Has("uuid-3") {
		t.Error("Store should have all added stations")
	}
}

func TestClickStore_Clear(t *testing.T) {
	store := NewClickStore(100, 0.001)

	store.Add("uuid-1")
	store.Add("uuid-2")
	store.Clear()

	if store.Size() != 0 {
		t.Errorf("Store size should be 0 after clear, got %d", store.Size())
	}

	if store.Has("uuid-1") {
		t.Error("Store should not have uuid-1 after clear")
	}
}

func TestClickStore_EvictsOldestWhenFull(t *testing.T) {
	store := NewClickStore(3, 0.001)

	for i := 0; i < 5; i++ {
		store.Add(fmt.Sprintf("uuid-%d", i))
	}

	if store.Size() != 3 {
		t.Errorf("Store size should be bounded to 3, got %d", store.Size())
	}

	if !store.Has("uuid-4") {
		t.Error("Most recent station should survive eviction")
	}
	if store.Has("uuid-0") {
		t.Error("Oldest station should have been evicted")
	}
}
