package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"marketdash/api"
	"marketdash/favorites"
	"marketdash/format"
	"marketdash/ui"
)

const (
	keyNewsFeeds     = "news.feeds"
	keyNewsBookmarks = "favorites." + favorites.ScopeNews
)

// NewsTab selects which feed the page shows.
type NewsTab int

const (
	TabMarket NewsTab = iota
	TabCrypto
)

func (t NewsTab) String() string {
	if t == TabCrypto {
		return "Crypto News"
	}
	return "Market News"
}

// NewsFeeds holds both feeds, loaded together.
type NewsFeeds struct {
	Market []api.Article
	Crypto []api.Article
}

func fetchNewsFeeds(ctx context.Context, client *api.Client) (NewsFeeds, error) {
	g, gctx := errgroup.WithContext(ctx)

	var out NewsFeeds
	g.Go(func() error {
		articles, err := client.News.Market(gctx)
		out.Market = articles
		return err
	})
	g.Go(func() error {
		articles, err := client.News.Crypto(gctx)
		out.Crypto = articles
		return err
	})
	if err := g.Wait(); err != nil {
		return NewsFeeds{}, err
	}
	return out, nil
}

// articleKey identifies an article for bookmarking.
func articleKey(a api.Article) string {
	if a.ID != "" {
		return string(a.ID)
	}
	return a.URL
}

type copiedMsg struct {
	url string
	err error
}

// News shows the market and crypto feeds in tabs with a filter, bookmarks
// and copy-link.
type News struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc

	Feeds     Remote[NewsFeeds]
	Tab       NewsTab
	Bookmarks *favorites.Set

	bookmarks Remote[[]string]
	search    textinput.Model
	cursor    int
	notice    string
	spinner   spinner.Model
}

func NewNews(env *Env) *News {
	return &News{
		env:       env,
		Bookmarks: favorites.NewSet(),
		search:    ui.NewSearchInput("Filter by title, summary or source...", 100),
		spinner:   ui.NewSpinner(env.Styles),
	}
}

func (n *News) Mount() tea.Cmd {
	n.ctx, n.cancel = context.WithCancel(context.Background())
	cmds := []tea.Cmd{n.fetch(), n.spinner.Tick}
	if n.env.Favorites != nil && !n.bookmarks.HasData() {
		n.Bookmarks.Track()
		cmds = append(cmds, n.env.loadFavorites(n.ctx, favorites.ScopeNews, n.bookmarks.Begin()))
	}
	return tea.Batch(cmds...)
}

func (n *News) Unmount() {
	if n.cancel != nil {
		n.cancel()
	}
	n.Feeds.Cancel()
	n.bookmarks.Cancel()
	n.search.Blur()
	n.notice = ""
}

func (n *News) Capturing() bool { return n.search.Focused() }

func (n *News) fetch() tea.Cmd {
	client := n.env.Client
	return load(n.ctx, keyNewsFeeds, n.Feeds.Begin(), func(ctx context.Context) (NewsFeeds, error) {
		return fetchNewsFeeds(ctx, client)
	})
}

// Current returns the active tab's feed, filtered by the search text.
func (n *News) Current() []api.Article {
	articles := n.Feeds.Data.Market
	if n.Tab == TabCrypto {
		articles = n.Feeds.Data.Crypto
	}
	return FilterArticles(articles, n.search.Value())
}

// SetQuery replaces the filter text.
func (n *News) SetQuery(q string) {
	n.search.SetValue(q)
	n.cursor = 0
}

func (n *News) selected() (api.Article, bool) {
	articles := n.Current()
	if n.cursor < 0 || n.cursor >= len(articles) {
		return api.Article{}, false
	}
	return articles[n.cursor], true
}

func (n *News) switchTab(t NewsTab) {
	if n.Tab != t {
		n.Tab = t
		n.cursor = 0
	}
}

func (n *News) copyLink() tea.Cmd {
	a, ok := n.selected()
	if !ok {
		return nil
	}
	if a.URL == "" {
		n.notice = "This article has no link"
		return nil
	}
	write, url := n.env.Clipboard, a.URL
	return func() tea.Msg {
		return copiedMsg{url: url, err: write(url)}
	}
}

func (n *News) toggleBookmark() tea.Cmd {
	a, ok := n.selected()
	if !ok {
		return nil
	}
	id := articleKey(a)
	if id == "" {
		return nil
	}
	on := n.Bookmarks.Toggle(id)
	return n.env.saveFavorite(favorites.ScopeNews, id, on)
}

func (n *News) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[NewsFeeds]:
		if msg.key == keyNewsFeeds {
			n.env.logFailure(msg.key, msg.err)
			n.Feeds.Resolve(msg.token, msg.data, msg.err)
			if c := len(n.Current()); n.cursor >= c {
				n.cursor = 0
			}
		}
	case loadedMsg[[]string]:
		if msg.key == keyNewsBookmarks {
			n.env.logFailure(msg.key, msg.err)
			if n.bookmarks.Resolve(msg.token, msg.data, msg.err) {
				if msg.err != nil {
					n.Bookmarks.Merge(nil)
				} else {
					n.Bookmarks.Merge(msg.data)
				}
			}
		}
	case savedMsg:
		n.env.handleSaved(msg)
	case copiedMsg:
		if msg.err != nil {
			n.notice = "Could not copy link: " + msg.err.Error()
		} else {
			n.notice = "Copied link: " + msg.url
		}
	case spinner.TickMsg:
		if n.Feeds.Loading() {
			var cmd tea.Cmd
			n.spinner, cmd = n.spinner.Update(msg)
			return cmd
		}
	case tea.KeyMsg:
		if n.search.Focused() {
			switch msg.String() {
			case "enter", "esc":
				n.search.Blur()
				return nil
			}
			var cmd tea.Cmd
			n.search, cmd = n.search.Update(msg)
			n.cursor = 0
			return cmd
		}
		return n.handleKeys(msg)
	}
	return nil
}

func (n *News) handleKeys(msg tea.KeyMsg) tea.Cmd {
	n.notice = ""
	switch msg.String() {
	case "/":
		return n.search.Focus()
	case "tab":
		n.switchTab((n.Tab + 1) % 2)
	case "left", "h":
		n.switchTab(TabMarket)
	case "right", "l":
		n.switchTab(TabCrypto)
	case "up", "k":
		if n.cursor > 0 {
			n.cursor--
		}
	case "down", "j":
		if n.cursor < len(n.Current())-1 {
			n.cursor++
		}
	case "b":
		return n.toggleBookmark()
	case "enter", "c":
		return n.copyLink()
	case "esc":
		if n.search.Value() != "" {
			n.SetQuery("")
		}
	case "r":
		return tea.Batch(n.fetch(), n.spinner.Tick)
	}
	return nil
}

func (n *News) View(width, height int) string {
	s := n.env.Styles
	n.spinner.Style = s.Loading

	if n.Feeds.Loading() && !n.Feeds.HasData() {
		return ui.Loading(s, n.spinner.View(), "Loading news...")
	}

	tabs := make([]string, 0, 2)
	for _, t := range []NewsTab{TabMarket, TabCrypto} {
		if t == n.Tab {
			tabs = append(tabs, s.NavActive.Render(t.String()))
		} else {
			tabs = append(tabs, s.NavInactive.Render(t.String()))
		}
	}
	sections := []string{lipgloss.JoinHorizontal(lipgloss.Top, tabs...)}

	hint := "enter or esc leaves the filter"
	if !n.search.Focused() {
		hint = "/ to filter"
	}
	sections = append(sections, ui.SearchBar(s, n.search, hint, width))

	if n.Feeds.Failed() {
		sections = append(sections, ui.ErrorBanner(s, "Failed to load news: "+n.Feeds.Err.Error()))
	}

	articles := n.Current()
	if len(articles) == 0 {
		sections = append(sections, ui.Empty(s, "No news available"),
			s.Muted.Render("Please check back later for the latest updates."))
	} else {
		// Each item takes up to three lines.
		start, end := listWindow(len(articles), n.cursor, (height-10)/3)
		now := n.env.Now()
		items := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			a := articles[i]
			items = append(items, ui.NewsItem(s, a, now, i == n.cursor, n.Bookmarks.Has(articleKey(a)), width))
		}
		sections = append(sections, strings.Join(items, "\n"))
		sections = append(sections, s.Muted.Render(fmt.Sprintf("%d of %d", n.cursor+1, len(articles))))

		if a, ok := n.selected(); ok && a.URL != "" {
			sections = append(sections, s.Info.Render(format.DateTime(a.Datetime.Time)+" • "+a.URL))
		}
	}

	if n.notice != "" {
		sections = append(sections, s.Positive.Render(n.notice))
	}

	sections = append(sections, ui.Help(s, "tab switch feed", "↑/↓ move", "b bookmark", "enter copy link", "r refresh"))
	return strings.Join(sections, "\n")
}

// listWindow returns the slice bounds of at most size items around cursor.
func listWindow(n, cursor, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
