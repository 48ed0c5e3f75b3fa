package format

// Trend is the direction of a change, used to pick colours and arrows.
type Trend int

const (
	Flat Trend = iota
	Up
	Down
)

// TrendOf classifies v. Only strictly positive values count as Up; zero and
// missing values are Flat.
func TrendOf(v float64) Trend {
	switch {
	case !finite(v):
		return Flat
	case v > 0:
		return Up
	case v < 0:
		return Down
	}
	return Flat
}

// Arrow returns a one-rune direction marker.
func (t Trend) Arrow() string {
	switch t {
	case Up:
		return "▲"
	case Down:
		return "▼"
	}
	return "•"
}
