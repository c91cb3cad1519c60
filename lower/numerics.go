package lower

import "math"

func float32Bits(v float64) uint64 { return uint64(math.Float32bits(float32(v))) }
func float64Bits(v float64) uint64 { return math.Float64bits(v) }
