package mat32

import (
	"math/rand/v2"
)

/*
NewRand makes a seeded random source. Pass it to everything that needs
randomness so runs are reproducible.
*/
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

/*
Randf makes random numbers in [a, b)
*/
func Randf(r *rand.Rand, a float32, b float32) float32 {
	return r.Float32()*(b-a) + a
}

/*
RandInitWeight draws an initial weight as the sum of three uniforms in
[-0.1, 0.1), which gives a bell-shaped spread in (-0.3, 0.3).
*/
func RandInitWeight(r *rand.Rand) float32 {
	return Randf(r, -0.1, 0.1) + Randf(r, -0.1, 0.1) + Randf(r, -0.1, 0.1)
}

/*
RandMat makes a new matrix filled with RandInitWeight values.
*/
func RandMat(r *rand.Rand, height int, width int) *Mat {
	m := NewMat(height, width)
	for i := range m.W {
		m.W[i] = RandInitWeight(r)
	}
	return m
}
