package systems

import "testing"

func TestSamplerDeterministic(t *testing.T) {
	a := NewSampler(42)
	b := NewSampler(42)

	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("draw %d: expected identical streams, got %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d: expected value in [0,1), got %v", i, va)
		}
	}

	if a.Drawn() != 1000 {
		t.Errorf("expected 1000 draws, got %d", a.Drawn())
	}
	if a.Seed() != 42 {
		t.Errorf("expected seed 42, got %d", a.Seed())
	}
}

func TestSamplerSeedsDiffer(t *testing.T) {
	a := NewSampler(1)
	b := NewSampler(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	if same {
		t.Error("expected different seeds to produce different streams")
	}
}

func TestSamplerIndexRange(t *testing.T) {
	s := NewSampler(7)
	for i := 0; i < 10000; i++ {
		idx := s.Index(13)
		if idx < 0 || idx >= 13 {
			t.Fatalf("expected index in [0,13), got %d", idx)
		}
	}
}
