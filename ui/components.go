package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"marketdash/api"
	"marketdash/format"
)

// NavItem is one entry of the page header.
type NavItem struct {
	Key   string
	Label string
}

// Header renders the app title, the page navigation and the theme indicator.
func Header(s Styles, items []NavItem, active int, dark bool, width int) string {
	title := s.Header.Render("📊 MarketDash")

	tabs := make([]string, 0, len(items))
	for i, item := range items {
		label := item.Key + " " + item.Label
		if i == active {
			tabs = append(tabs, s.NavActive.Render(label))
		} else {
			tabs = append(tabs, s.NavInactive.Render(label))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	mode := "☀ light"
	if dark {
		mode = "☾ dark"
	}
	indicator := s.Muted.Render(mode + " (t)")

	left := lipgloss.JoinHorizontal(lipgloss.Top, title, " ", nav)
	gap := width - lipgloss.Width(left) - lipgloss.Width(indicator)
	if gap < 1 {
		return left + "\n" + indicator
	}
	return left + strings.Repeat(" ", gap) + indicator
}

// Help renders the key hints shown at the bottom of a page.
func Help(s Styles, hints ...string) string {
	return s.Info.Render(strings.Join(hints, " • "))
}

// Card wraps body in a bordered box with a title line.
func Card(s Styles, title, body string, width int) string {
	style := s.Card
	if width > 2 {
		style = style.Width(width - 2)
	}
	if title == "" {
		return style.Render(body)
	}
	return style.Render(s.Title.Render(title) + "\n" + body)
}

// ErrorBanner shows a page or section error with the retry hint.
func ErrorBanner(s Styles, msg string) string {
	return s.Error.Render("⚠ " + msg + "  " + s.Muted.Render("press r to retry"))
}

// Loading renders a spinner frame next to a label.
func Loading(s Styles, frame, label string) string {
	return s.Loading.Render(strings.TrimSpace(frame + " " + label))
}

// Empty is the placeholder for a section with nothing to show.
func Empty(s Styles, label string) string {
	return s.Muted.Render(label)
}

// CoinCard renders a compact quote box for the dashboard.
func CoinCard(s Styles, c api.Coin, width int) string {
	name := fmt.Sprintf("%s %s", c.Name, s.Muted.Render(strings.ToUpper(c.Symbol)))
	body := strings.Join([]string{
		s.Price.Render(format.Price(c.CurrentPrice.Float64())),
		s.Change(c.PriceChangePercent24h.Float64()),
		s.Muted.Render("Cap " + format.Compact(c.MarketCap.Float64())),
		s.Muted.Render("Vol " + format.Compact(c.TotalVolume.Float64())),
	}, "\n")
	return Card(s, name, body, width)
}

// IndexCard renders one stock index.
func IndexCard(s Styles, idx api.MarketIndex, width int) string {
	name := idx.Name
	if name == "" {
		name = idx.Symbol
	}
	pct := idx.ChangePercent.Float64()
	body := strings.Join([]string{
		s.Value.Render(format.Amount(idx.Current.Float64())),
		s.Trend(pct).Render(format.SignedChange(idx.Change.Float64(), 2) + " (" + format.Percent(pct) + ")"),
	}, "\n")
	return Card(s, name, body, width)
}

// PairCard renders one major forex pair.
func PairCard(s Styles, p api.MajorPair, width int) string {
	change := p.Change.Float64()
	body := strings.Join([]string{
		s.Value.Render(format.Rate(p.Rate.Float64())),
		s.Trend(change).Render(format.SignedChange(change, 4) + " (" + format.Percent(p.ChangePercent.Float64()) + ")"),
	}, "\n")
	return Card(s, p.Pair, body, width)
}

// NewsItem renders one article: title, a summary line and its byline.
func NewsItem(s Styles, a api.Article, now time.Time, selected, bookmarked bool, width int) string {
	if width < 20 {
		width = 20
	}

	marker := "  "
	if bookmarked {
		marker = s.Star.Render("★ ")
	}
	title := runewidth.Truncate(a.Title, width-4, "…")
	if selected {
		title = s.Selected.Render("▸ " + title)
	} else {
		title = s.Value.Render("  " + title)
	}

	lines := []string{marker + title}
	if summary := strings.TrimSpace(a.Summary); summary != "" {
		lines = append(lines, "    "+s.Muted.Render(runewidth.Truncate(summary, width-6, "…")))
	}

	byline := format.RelativeDate(a.Datetime.Time, now)
	if a.Source != "" {
		byline = a.Source + " • " + byline
	}
	lines = append(lines, "    "+s.Disabled.Render(byline))
	return strings.Join(lines, "\n")
}

// RateTable renders up to limit currencies of the table in columns.
func RateTable(s Styles, table *api.RateTable, limit, columns int) string {
	if table == nil {
		return Empty(s, "No rates available")
	}
	if columns < 1 {
		columns = 1
	}

	codes := table.Currencies()
	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}

	var b strings.Builder
	for i, code := range codes {
		rate, _ := table.Rate(code)
		cell := s.TableHeader.Render(padRight(code, 4)) + s.TableRow.Render(padLeft(format.Rate(rate), 14))
		b.WriteString(cell)
		if (i+1)%columns == 0 || i == len(codes)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("   ")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FavoriteChecker reports whether an id is starred.
type FavoriteChecker interface {
	Has(id string) bool
}

// CoinTable renders coins as rows with the cursor row highlighted. Only the
// rows that fit in height are drawn, scrolled so the cursor stays visible.
func CoinTable(s Styles, coins []api.Coin, cursor int, favs FavoriteChecker, height int) string {
	header := s.TableHeader.Render(fmt.Sprintf("%s %s %s %s %s %s %s",
		padLeft("#", 4), " ", padRight("Name", 18), padRight("Symbol", 7),
		padLeft("Price", 14), padLeft("24h", 9), padLeft("Market Cap", 12)+" "+padLeft("Volume", 11)))

	if len(coins) == 0 {
		return header + "\n" + Empty(s, "No cryptocurrencies match")
	}

	start, end := visibleRange(len(coins), cursor, height-1)
	rows := make([]string, 0, end-start+1)
	rows = append(rows, header)
	for i := start; i < end; i++ {
		c := coins[i]
		star := " "
		if favs != nil && favs.Has(c.ID) {
			star = s.Star.Render("★")
		}
		rank := "-"
		if c.MarketCapRank.Valid {
			rank = fmt.Sprintf("%d", int(c.MarketCapRank.Value))
		}
		pct := c.PriceChangePercent24h.Float64()

		line := fmt.Sprintf("%s %s %s %s %s %s %s",
			padLeft(rank, 4), star,
			padRight(runewidth.Truncate(c.Name, 18, "…"), 18),
			padRight(strings.ToUpper(c.Symbol), 7),
			padLeft(format.Price(c.CurrentPrice.Float64()), 14),
			s.Trend(pct).Render(padLeft(format.Percent(pct), 9)),
			padLeft(format.Compact(c.MarketCap.Float64()), 12)+" "+padLeft(format.Compact(c.TotalVolume.Float64()), 11),
		)
		if i == cursor {
			line = s.Selected.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// visibleRange returns the [start, end) window of n rows that fits in
// height and contains cursor.
func visibleRange(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= n {
		cursor = n - 1
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func padRight(s string, w int) string {
	if gap := w - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - runewidth.StringWidth(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
