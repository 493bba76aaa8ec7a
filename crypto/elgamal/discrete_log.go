package elgamal

import (
	"math"

	"github.com/bwesterb/go-ristretto"
	lru "github.com/hashicorp/golang-lru"
)

const babyStepCacheSize = 4

var babyStepTables *lru.Cache

func init() {
	cache, err := lru.New(babyStepCacheSize)
	if err != nil {
		panic(err)
	}
	babyStepTables = cache
}

// babyStepTable maps the encoding of i·G to i for i in [0, m).
type babyStepTable struct {
	m       uint64
	entries map[[PointSize]byte]uint64
}

func loadBabyStepTable(m uint64) *babyStepTable {
	if cached, ok := babyStepTables.Get(m); ok {
		return cached.(*babyStepTable)
	}
	table := &babyStepTable{m: m, entries: make(map[[PointSize]byte]uint64, m)}
	step := IdentityPoint()
	base := BaseG()
	for i := uint64(0); i < m; i++ {
		table.entries[encodePoint(step)] = i
		var next ristretto.Point
		next.Add(step, base)
		step = &next
	}
	babyStepTables.Add(m, table)
	return table
}

// SolveDiscreteLog finds x in [0, maxAmount] with x·G equal to target using
// baby-step giant-step. Tables are cached per step size.
func SolveDiscreteLog(target *ristretto.Point, maxAmount uint64) (uint64, bool) {
	m := uint64(math.Ceil(math.Sqrt(float64(maxAmount) + 1)))
	if m == 0 {
		m = 1
	}
	table := loadBabyStepTable(m)

	var giant ristretto.Point
	giant.ScalarMultBase(ScalarFromUint64(m))

	current := *target
	maxJ := maxAmount / m
	for j := uint64(0); j <= maxJ; j++ {
		if i, ok := table.entries[encodePoint(&current)]; ok {
			if x := j*m + i; x <= maxAmount {
				return x, true
			}
		}
		var next ristretto.Point
		next.Sub(&current, &giant)
		current = next
	}
	return 0, false
}
