package document

import (
	"math"

	"github.com/logjamd/logjamd/pkg/uid"
)

func mathFloatBits(v float64) uint64     { return math.Float64bits(v) }
func mathFloatFromBits(b uint64) float64 { return math.Float64frombits(b) }

func uidFromBytes(b []byte) (uid.ID, error) { return uid.FromBytes(b) }
