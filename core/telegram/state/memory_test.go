package state

import (
	"sync"
	"testing"
)

func TestMemoryManagerDefaultsToIdle(t *testing.T) {
	m := NewMemoryManager()
	if got := m.GetState(1); got != StateIdle {
		t.Fatalf("expected idle for unknown user, got %q", got)
	}
	if m.HasState(1) || m.InProgress(1) {
		t.Fatal("unknown user should not be in progress")
	}
	sess := m.Get(1)
	if sess == nil || sess.State != StateIdle {
		t.Fatalf("expected default idle session, got %+v", sess)
	}
}

func TestMemoryManagerStateTransitions(t *testing.T) {
	const awaiting State = "awaiting_note_text"

	m := NewMemoryManager()
	m.SetState(7, awaiting)
	if got := m.GetState(7); got != awaiting {
		t.Fatalf("state = %q, want %q", got, awaiting)
	}
	if !m.InProgress(7) {
		t.Fatal("user should be in progress after SetState")
	}
	// Other users are unaffected
	if m.InProgress(8) {
		t.Fatal("unrelated user should stay idle")
	}

	m.ClearState(7)
	if got := m.GetState(7); got != StateIdle {
		t.Fatalf("state after clear = %q, want idle", got)
	}
}

func TestMemoryManagerTempData(t *testing.T) {
	m := NewMemoryManager()

	m.SetTemp(5, "note_id", int64(42))
	v, ok := m.GetTempInt64(5, "note_id")
	if !ok || v != 42 {
		t.Fatalf("GetTempInt64 = %d, %v; want 42, true", v, ok)
	}

	// Wrong type is rejected
	m.SetTemp(5, "label", "milk")
	if _, ok := m.GetTempInt64(5, "label"); ok {
		t.Fatal("GetTempInt64 should reject non-int64 values")
	}

	m.ClearTemp(5, "note_id")
	if _, ok := m.GetTemp(5, "note_id"); ok {
		t.Fatal("temp value should be removed after ClearTemp")
	}
}

func TestMemoryManagerClearRemovesSession(t *testing.T) {
	const awaiting State = "awaiting_delete_id"

	m := NewMemoryManager()
	m.SetState(9, awaiting)
	m.SetTemp(9, "note_id", int64(1))

	m.Clear(9)
	if m.HasState(9) {
		t.Fatal("cleared user should be idle")
	}
	if _, ok := m.GetTemp(9, "note_id"); ok {
		t.Fatal("cleared user should have no temp data")
	}
}

func TestMemoryManagerConcurrentUsers(t *testing.T) {
	const awaiting State = "awaiting_update_id"

	m := NewMemoryManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, awaiting)
			m.SetTemp(id, "note_id", id)
			m.ClearState(id)
		}(int64(i))
	}
	wg.Wait()

	for i := int64(0); i < 50; i++ {
		if m.GetState(i) != StateIdle {
			t.Fatalf("user %d should be idle after ClearState", i)
		}
		v, ok := m.GetTempInt64(i, "note_id")
		if !ok || v != i {
			t.Fatalf("user %d temp = %d, %v; want %d, true", i, v, ok, i)
		}
	}
}
