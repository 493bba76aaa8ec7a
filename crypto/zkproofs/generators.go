package zkproofs

import (
	"sync"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

// MaxRangeBits is the largest aggregated bit count a single range proof covers.
const MaxRangeBits = 256

type bulletproofGens struct {
	G []*ristretto.Point
	H []*ristretto.Point
}

var (
	gensOnce sync.Once
	gens     *bulletproofGens
)

// generatorsChain expands a label into an unbounded sequence of points.
func generatorsChain(label string, n int) []*ristretto.Point {
	shake := sha3.NewShake256()
	shake.Write([]byte("GeneratorsChain"))
	shake.Write([]byte(label))

	out := make([]*ristretto.Point, n)
	var wide [64]byte
	for i := range out {
		shake.Read(wide[:])
		out[i] = elgamal.PointFromUniformBytes(&wide)
	}
	return out
}

func rangeGenerators() *bulletproofGens {
	gensOnce.Do(func() {
		gens = &bulletproofGens{
			G: generatorsChain("G", MaxRangeBits),
			H: generatorsChain("H", MaxRangeBits),
		}
	})
	return gens
}
