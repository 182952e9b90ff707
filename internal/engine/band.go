package engine

// Band is a presentation-urgency tier derived purely from per-question
// elapsed seconds. It feeds UI hooks only and never influences scoring.
type Band int

const (
	BandCalm     Band = iota // under 10s
	BandCool                 // under 20s
	BandNeutral              // under 30s
	BandWarm                 // under 40s
	BandHot                  // under 50s
	BandCritical             // 50s and beyond, blinking
)

var bandNames = [...]string{"calm", "cool", "neutral", "warm", "hot", "critical"}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return "unknown"
	}
	return bandNames[b]
}

// BandFor maps elapsed seconds to a band. In the critical band the second
// return value alternates every second to drive a blink effect.
func BandFor(seconds int) (Band, bool) {
	switch {
	case seconds < 10:
		return BandCalm, false
	case seconds < 20:
		return BandCool, false
	case seconds < 30:
		return BandNeutral, false
	case seconds < 40:
		return BandWarm, false
	case seconds < 50:
		return BandHot, false
	default:
		return BandCritical, seconds%2 == 0
	}
}
