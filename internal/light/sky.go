package light

// Sky is ambient light from open sky in 0..15.
type Sky uint8

const (
	NoSky   Sky = 0
	FullSky Sky = MaxValue
)

// Decrement subtracts one, stopping at zero.
func (s Sky) Decrement() Sky {
	if s == 0 {
		return 0
	}
	return s - 1
}

// Attenuate returns the value skylight carries into the next block. Light
// travelling straight down keeps its full strength.
func (s Sky) Attenuate(downward bool) Sky {
	if downward {
		return s
	}
	return s.Decrement()
}

func MaxSky(a, b Sky) Sky {
	if a > b {
		return a
	}
	return b
}
