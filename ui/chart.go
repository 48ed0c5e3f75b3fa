package ui

import (
	"math"
	"strings"

	"marketdash/api"
	"marketdash/format"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Chart draws points as a filled line chart of width columns and height
// rows, followed by a low/high caption. Non-finite prices are skipped. The
// colour follows the direction from the first to the last point.
func Chart(s Styles, points []api.PricePoint, width, height int) string {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0) {
			values = append(values, p.Price)
		}
	}
	if len(values) < 2 || width < 2 || height < 1 {
		return Empty(s, "No chart data")
	}

	cols := resample(values, width)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	levels := height * 8
	rows := make([][]rune, height)
	for r := range rows {
		rows[r] = make([]rune, len(cols))
	}
	for c, v := range cols {
		// flat series sit on the middle row
		scaled := levels / 2
		if hi > lo {
			scaled = 1 + int(math.Round((v-lo)/(hi-lo)*float64(levels-1)))
		}
		for r := 0; r < height; r++ {
			fill := scaled - (height-1-r)*8
			switch {
			case fill >= 8:
				rows[r][c] = blocks[8]
			case fill <= 0:
				rows[r][c] = blocks[0]
			default:
				rows[r][c] = blocks[fill]
			}
		}
	}

	style := s.Trend(values[len(values)-1] - values[0])
	lines := make([]string, 0, height+1)
	for _, row := range rows {
		lines = append(lines, style.Render(string(row)))
	}
	lines = append(lines, s.Muted.Render("Low "+format.Price(lo)+"  High "+format.Price(hi)))
	return strings.Join(lines, "\n")
}

// resample splits values into n contiguous buckets and keeps, for each
// bucket, whichever of its min or max lies further from the series mean.
// Spikes and dips survive downsampling.
func resample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	out := make([]float64, n)
	for i := range out {
		from := i * len(values) / n
		to := (i + 1) * len(values) / n
		lo, hi := values[from], values[from]
		for _, v := range values[from+1 : to] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi-mean >= mean-lo {
			out[i] = hi
		} else {
			out[i] = lo
		}
	}
	return out
}
