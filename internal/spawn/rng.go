package spawn

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
)

// randomSource is a seeded PCG stream whose position can be persisted.
type randomSource struct {
	seed int64
	pcg  *rand.PCG
	rnd  *rand.Rand
}

func newRandomSource(seed int64) *randomSource {
	r := &randomSource{}
	r.Reseed(seed)
	return r
}

// Reseed restarts the stream from seed.
func (r *randomSource) Reseed(seed int64) {
	r.seed = seed
	r.pcg = rand.NewPCG(uint64(seed), splitmix64(uint64(seed)))
	r.rnd = rand.New(r.pcg)
}

// Seed returns the seed the stream was last started from.
func (r *randomSource) Seed() int64 { return r.seed }

// Between returns a uniform value in [lo, hi]. lo must not exceed hi.
func (r *randomSource) Between(lo, hi int32) int32 {
	span := int64(hi) - int64(lo) + 1
	return int32(int64(lo) + r.rnd.Int64N(span))
}

// State encodes the current stream position.
func (r *randomSource) State() string {
	b, err := r.pcg.MarshalBinary()
	if err != nil {
		// PCG.MarshalBinary never fails.
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func decodeRandomState(s string) (*rand.PCG, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding random state: %w", err)
	}
	pcg := &rand.PCG{}
	if err := pcg.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("decoding random state: %w", err)
	}
	return pcg, nil
}

// setState continues the stream from a position produced by State.
func (r *randomSource) setState(pcg *rand.PCG) {
	r.pcg = pcg
	r.rnd = rand.New(pcg)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
