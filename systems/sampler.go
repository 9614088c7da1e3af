package systems

import "golang.org/x/exp/rand"

// Sampler is a seeded source of uniform values in [0, 1).
// Two samplers with the same seed yield the same stream.
type Sampler struct {
	rng   *rand.Rand
	seed  int64
	drawn int
}

// NewSampler creates a sampler for seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{
		rng:  rand.New(rand.NewSource(uint64(seed))),
		seed: seed,
	}
}

// Next returns the next value in [0, 1).
func (s *Sampler) Next() float64 {
	s.drawn++
	return s.rng.Float64()
}

// Index returns a uniform index in [0, n).
func (s *Sampler) Index(n int) int {
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Seed returns the seed the sampler was created with.
func (s *Sampler) Seed() int64 { return s.seed }

// Drawn returns how many values have been consumed.
func (s *Sampler) Drawn() int { return s.drawn }
