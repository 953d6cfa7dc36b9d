package result

import (
	"testing"

	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
)

func TestNew(t *testing.T) {
	r := New(7, 0.95, corpus.Regulations)

	if r.ID() != 7 {
		t.Errorf("ID() = %d", r.ID())
	}
	if r.Score() != 0.95 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Kind() != corpus.Regulations {
		t.Errorf("Kind() = %q", r.Kind())
	}
}

func TestIDs(t *testing.T) {
	results := []Result{
		New(3, 0.9, corpus.Solutions),
		New(1, 0.8, corpus.Solutions),
		New(2, 0.7, corpus.Solutions),
	}
	ids := IDs(results)
	want := []int64{3, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("IDs() len = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestIDs_Empty(t *testing.T) {
	ids := IDs(nil)
	if ids == nil || len(ids) != 0 {
		t.Errorf("IDs(nil) = %v, want empty non-nil slice", ids)
	}
}
