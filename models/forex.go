package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketdash/api"
	"marketdash/format"
	"marketdash/ui"
)

const (
	keyForexRates   = "forex.rates"
	keyForexPairs   = "forex.pairs"
	keyForexConvert = "forex.convert"

	forexFetchError = "Failed to fetch exchange rates. Please try again later."
	forexPairsShown = 6
	forexRatesShown = 20
)

var currencyNames = map[string]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"SEK": "Swedish Krona",
	"NZD": "New Zealand Dollar",
}

// CurrencyName returns a readable name for code, or the code itself.
func CurrencyName(code string) string {
	if name, ok := currencyNames[code]; ok {
		return name
	}
	return code
}

// Converter is the state of the currency converter. Converted and Rate come
// from the backend and are zero until a conversion succeeds.
type Converter struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Converted float64
	Rate      float64
}

// ParseAmount reads a user-typed amount. Anything unparsable is zero and
// negatives clamp to zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

type forexField int

const (
	fieldFrom forexField = iota
	fieldTo
	fieldAmount
)

// Forex shows the currency converter, the major pairs and the rate table.
type Forex struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc

	Rates      Remote[*api.RateTable]
	Pairs      Remote[[]api.MajorPair]
	Conversion Remote[*api.Conversion]
	Converter  Converter

	LastUpdated time.Time

	focus   forexField
	amount  textinput.Model
	spinner spinner.Model
}

func NewForex(env *Env) *Forex {
	cfg := env.Config.Forex
	amount := decimal.NewFromFloat(cfg.DefaultAmount)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "0.00"
	in.CharLimit = 20
	in.SetValue(amount.String())

	return &Forex{
		env: env,
		Converter: Converter{
			From:   strings.ToUpper(cfg.DefaultFrom),
			To:     strings.ToUpper(cfg.DefaultTo),
			Amount: amount,
		},
		amount:  in,
		spinner: ui.NewSpinner(env.Styles),
	}
}

func (f *Forex) Mount() tea.Cmd {
	f.ctx, f.cancel = context.WithCancel(context.Background())
	return tea.Batch(f.fetchRates(), f.fetchPairs(), f.spinner.Tick)
}

func (f *Forex) Unmount() {
	if f.cancel != nil {
		f.cancel()
	}
	f.Rates.Cancel()
	f.Pairs.Cancel()
	f.Conversion.Cancel()
	f.amount.Blur()
	f.focus = fieldFrom
}

// Capturing is true while the amount field is being edited.
func (f *Forex) Capturing() bool { return f.amount.Focused() }

func (f *Forex) fetchRates() tea.Cmd {
	return load(f.ctx, keyForexRates, f.Rates.Begin(), f.env.Client.Forex.Rates)
}

// fetchPairs logs failures and resolves to an empty list.
func (f *Forex) fetchPairs() tea.Cmd {
	client, logger := f.env.Client, f.env.Logger
	return load(f.ctx, keyForexPairs, f.Pairs.Begin(), func(ctx context.Context) ([]api.MajorPair, error) {
		pairs, err := client.Forex.MajorPairs(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Warn("major pairs unavailable", zap.Error(err))
			return []api.MajorPair{}, nil
		}
		return pairs, err
	})
}

// convert asks the backend for the current converter inputs. It does
// nothing until a rate table has loaded.
func (f *Forex) convert() tea.Cmd {
	if f.Rates.Data == nil {
		return nil
	}
	client := f.env.Client
	from, to := f.Converter.From, f.Converter.To
	amount := f.Converter.Amount.InexactFloat64()
	return load(f.ctx, keyForexConvert, f.Conversion.Begin(), func(ctx context.Context) (*api.Conversion, error) {
		return client.Forex.Convert(ctx, from, to, amount)
	})
}

// SetAmount parses s into the converter amount and reconverts on change.
func (f *Forex) SetAmount(s string) tea.Cmd {
	amount := ParseAmount(s)
	if amount.Equal(f.Converter.Amount) {
		return nil
	}
	f.Converter.Amount = amount
	return f.convert()
}

// Swap exchanges the from and to currencies.
func (f *Forex) Swap() tea.Cmd {
	f.Converter.From, f.Converter.To = f.Converter.To, f.Converter.From
	return f.convert()
}

// cycle moves the focused currency by step through the table's codes.
func (f *Forex) cycle(step int) tea.Cmd {
	codes := f.Rates.Data.Currencies()
	if len(codes) == 0 {
		return nil
	}
	target := &f.Converter.From
	if f.focus == fieldTo {
		target = &f.Converter.To
	}
	i := -1
	for j, code := range codes {
		if code == *target {
			i = j
			break
		}
	}
	switch {
	case i < 0:
		i = 0
	default:
		i = (i + step + len(codes)) % len(codes)
	}
	if codes[i] == *target {
		return nil
	}
	*target = codes[i]
	return f.convert()
}

func (f *Forex) nextFocus() tea.Cmd {
	f.focus = (f.focus + 1) % 3
	if f.focus == fieldAmount {
		return f.amount.Focus()
	}
	f.amount.Blur()
	return nil
}

func (f *Forex) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[*api.RateTable]:
		if msg.key != keyForexRates {
			return nil
		}
		f.env.logFailure(msg.key, msg.err)
		if f.Rates.Resolve(msg.token, msg.data, msg.err) && msg.err == nil {
			f.LastUpdated = f.env.Now()
			return f.convert()
		}
	case loadedMsg[[]api.MajorPair]:
		if msg.key == keyForexPairs {
			f.Pairs.Resolve(msg.token, msg.data, msg.err)
		}
	case loadedMsg[*api.Conversion]:
		if msg.key != keyForexConvert {
			return nil
		}
		f.env.logFailure(msg.key, msg.err)
		if !f.Conversion.Resolve(msg.token, msg.data, msg.err) {
			return nil
		}
		switch {
		case msg.err != nil || msg.data == nil:
			f.Converter.Converted, f.Converter.Rate = 0, 0
		default:
			f.Converter.Converted = msg.data.ConvertedAmount.Or(0)
			f.Converter.Rate = msg.data.Rate.Or(0)
		}
	case spinner.TickMsg:
		if f.Rates.Loading() || f.Pairs.Loading() {
			var cmd tea.Cmd
			f.spinner, cmd = f.spinner.Update(msg)
			return cmd
		}
	case tea.KeyMsg:
		if f.amount.Focused() {
			switch msg.String() {
			case "tab", "enter":
				return f.nextFocus()
			case "esc":
				f.amount.Blur()
				f.focus = fieldFrom
				return nil
			}
			var cmd tea.Cmd
			f.amount, cmd = f.amount.Update(msg)
			return tea.Batch(cmd, f.SetAmount(f.amount.Value()))
		}
		switch msg.String() {
		case "tab":
			return f.nextFocus()
		case "left", "h", "up", "k":
			return f.cycle(-1)
		case "right", "l", "down", "j":
			return f.cycle(1)
		case "s":
			return f.Swap()
		case "r":
			return tea.Batch(f.fetchRates(), f.fetchPairs(), f.spinner.Tick)
		}
	}
	return nil
}

func (f *Forex) View(width, height int) string {
	s := f.env.Styles
	f.spinner.Style = s.Loading

	if f.Rates.Loading() && !f.Rates.HasData() {
		return ui.Loading(s, f.spinner.View(), "Loading exchange rates...")
	}

	var sections []string
	if f.Rates.Failed() {
		sections = append(sections, ui.ErrorBanner(s, forexFetchError))
	}

	half := width / 2
	if half < 34 {
		half = 34
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Card(s, "Currency Converter", f.converterView(), half),
		ui.Card(s, "Major Forex Pairs", f.pairsView(half), half),
	))

	if table := f.Rates.Data; table != nil {
		base := table.Base
		if base == "" {
			base = "USD"
		}
		body := s.Muted.Render("Base: "+base) + "\n" + ui.RateTable(s, table, forexRatesShown, 4)
		if n := len(table.Currencies()); n > forexRatesShown {
			body += "\n" + s.Muted.Render(fmt.Sprintf("Showing %d of %d currencies", forexRatesShown, n))
		}
		sections = append(sections, ui.Card(s, "All Exchange Rates", body, width))
	}

	sections = append(sections, ui.Help(s, "tab next field", "←/→ currency", "s swap", "r refresh"))
	return strings.Join(sections, "\n")
}

func (f *Forex) converterView() string {
	s := f.env.Styles
	c := f.Converter

	label := func(field forexField, text string) string {
		if f.focus == field {
			return s.Selected.Render(text)
		}
		return s.Value.Render(text)
	}

	amount := f.amount.View()
	if !f.amount.Focused() {
		amount = label(fieldAmount, c.Amount.String())
	}

	lines := []string{
		"Amount  " + amount,
		"From    " + label(fieldFrom, fmt.Sprintf("‹ %s ›", c.From)) + " " + s.Muted.Render(CurrencyName(c.From)),
		"To      " + label(fieldTo, fmt.Sprintf("‹ %s ›", c.To)) + " " + s.Muted.Render(CurrencyName(c.To)),
		"",
		s.Price.Render(format.Amount(c.Converted) + " " + c.To),
		s.Info.Render(fmt.Sprintf("1 %s = %s %s", c.From, format.Rate(c.Rate), c.To)),
	}
	if !f.LastUpdated.IsZero() {
		lines = append(lines, s.Muted.Render("Updated: "+f.LastUpdated.Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func (f *Forex) pairsView(width int) string {
	s := f.env.Styles
	switch {
	case f.Pairs.Loading() && !f.Pairs.HasData():
		return ui.Loading(s, f.spinner.View(), "Loading pairs...")
	case len(f.Pairs.Data) == 0:
		return ui.Empty(s, "No major pairs data available")
	}
	pairs := f.Pairs.Data
	if len(pairs) > forexPairsShown {
		pairs = pairs[:forexPairsShown]
	}
	cardWidth := (width - 4) / 2
	cards := make([]string, 0, len(pairs))
	for _, p := range pairs {
		cards = append(cards, ui.PairCard(s, p, cardWidth))
	}
	return grid(cards, 2)
}
