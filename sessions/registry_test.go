package sessions

import (
	"testing"
	"time"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/selection"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(time.Hour)

	s := reg.Create("Pharmaceuticals")
	if s.ID == "" {
		t.Fatal("session id was not generated")
	}

	got, err := reg.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	if _, err := reg.Get("missing"); err == nil {
		t.Error("Get on unknown id succeeded")
	}
}

func TestWithLockSerializesMutations(t *testing.T) {
	reg := NewRegistry(time.Hour)
	s := reg.Create("Pharmaceuticals")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.WithLock(func(st *selection.State, _ *cart.Cart) {
				st.SetSampleSolvent("Ethanol", "")
			})
		}
	}()
	for i := 0; i < 100; i++ {
		s.WithLock(func(st *selection.State, _ *cart.Cart) {
			st.SetSampleSolvent("Distilled Water", "")
		})
	}
	<-done

	s.WithLock(func(st *selection.State, _ *cart.Cart) {
		st.SetSampleSolvent("DMSO", "")
	})
	s.WithLock(func(st *selection.State, _ *cart.Cart) {
		if st.SampleSolvent != "DMSO" {
			t.Errorf("final solvent = %q, want the last write", st.SampleSolvent)
		}
	})
}

func TestPurgeIdle(t *testing.T) {
	reg := NewRegistry(30 * time.Minute)
	stale := reg.Create("Pharmaceuticals")
	fresh := reg.Create("Nutraceuticals")

	stale.mu.Lock()
	stale.lastTouched = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	removed := reg.PurgeIdle(time.Now())
	if removed != 1 {
		t.Errorf("PurgeIdle removed %d sessions, want 1", removed)
	}
	if _, err := reg.Get(stale.ID); err == nil {
		t.Error("stale session survived the purge")
	}
	if _, err := reg.Get(fresh.ID); err != nil {
		t.Error("fresh session was purged")
	}
}

func TestDrafts(t *testing.T) {
	reg := NewRegistry(time.Hour)
	s := reg.Create("Pharmaceuticals")

	if _, ok := s.Draft("item-1"); ok {
		t.Error("Draft on empty session returned something")
	}

	s.OpenDraft("item-1", &cart.Draft{})
	if _, ok := s.Draft("item-1"); !ok {
		t.Error("opened draft not found")
	}

	s.DiscardDraft("item-1")
	if _, ok := s.Draft("item-1"); ok {
		t.Error("discarded draft still present")
	}
}
