package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marketdash/api"
	"marketdash/format"
)

const tickerSeparator = "   •   "

type tickerCell struct {
	r     rune
	style int
}

const (
	cellPlain = iota
	cellSymbol
	cellUp
	cellDown
	cellFlat
)

// Ticker renders a one-line scrolling strip of quotes. offset advances the
// strip by one column per step and wraps around, so callers can simply
// increment it on every animation tick.
func Ticker(s Styles, coins []api.Coin, offset, width int) string {
	if len(coins) == 0 || width <= 0 {
		return ""
	}

	var cells []tickerCell
	push := func(text string, style int) {
		for _, r := range text {
			cells = append(cells, tickerCell{r: r, style: style})
		}
	}
	for _, c := range coins {
		pct := c.PriceChangePercent24h.Float64()
		trend := cellFlat
		switch format.TrendOf(pct) {
		case format.Up:
			trend = cellUp
		case format.Down:
			trend = cellDown
		}
		push(strings.ToUpper(c.Symbol), cellSymbol)
		push(" "+format.Price(c.CurrentPrice.Float64())+" ", cellPlain)
		push(format.TrendOf(pct).Arrow()+" "+format.Percent(pct), trend)
		push(tickerSeparator, cellPlain)
	}

	n := len(cells)
	start := offset % n
	if start < 0 {
		start += n
	}

	window := make([]tickerCell, width)
	for i := range window {
		window[i] = cells[(start+i)%n]
	}

	styles := map[int]lipgloss.Style{
		cellPlain:  s.TableRow,
		cellSymbol: s.Value,
		cellUp:     s.Positive,
		cellDown:   s.Negative,
		cellFlat:   s.Neutral,
	}

	var b strings.Builder
	run := []rune{}
	current := window[0].style
	flush := func() {
		if len(run) > 0 {
			b.WriteString(styles[current].Render(string(run)))
			run = run[:0]
		}
	}
	for _, c := range window {
		if c.style != current {
			flush()
			current = c.style
		}
		run = append(run, c.r)
	}
	flush()
	return b.String()
}
