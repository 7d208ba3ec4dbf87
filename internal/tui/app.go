// Package tui provides the interactive Bubble Tea dashboard for mchango.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/mchango/internal/api"
	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/share"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Payer initiates STK push payments.
type Payer interface {
	InitiatePayment(ctx context.Context, req model.ContributionRequest) (*api.PaymentResult, error)
}

// Sharer hands a share payload to the platform.
type Sharer interface {
	Share(ctx context.Context, p share.Payload) (share.Result, error)
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Fetcher     pipeline.Fetcher
	Payer       Payer
	Sharer      Sharer
	Static      config.Static
	Refresh     time.Duration
	AutoRefresh bool
	Timeout     time.Duration // per network call
	Prefill     contribution.Prefill
	NeedSetup   bool
	Config      config.Config // edited and saved by the setup wizard
	ConfigPath  string
	Log         zerolog.Logger
	Now         func() time.Time

	// Reconnect rebuilds the network clients after setup changes the endpoints.
	Reconnect func(cfg config.Config) (pipeline.Fetcher, Payer)
}

// Toast texts.
const (
	toastInitiating   = "Initiating payment..."
	toastCheckPhone   = "Check your phone to complete the payment"
	toastPayFailed    = "Failed to initiate payment"
	toastFetchFailed  = "Failed to fetch contribution data"
	toastShareFailed  = "Could not share contribution details"
	toastSetupSaved   = "Settings saved"
	toastSetupSkipped = "Settings not saved"
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 140
	minContentHeight = 5
	toastDuration    = 4 * time.Second
	tickInterval     = 250 * time.Millisecond
)

// PaybillBanner tells contributors how to pay without the app.
func PaybillBanner(paybill string) string {
	return fmt.Sprintf("Use Paybill Number: %s. Account Number is shown next to each department name.", paybill)
}

// boardLoadedMsg carries a fetch result tagged with the sequence number of
// the request that produced it.
type boardLoadedMsg struct {
	seq   int
	board *pipeline.Board
	err   error
}

type paymentDoneMsg struct {
	result *api.PaymentResult
	err    error
}

type shareDoneMsg struct {
	result share.Result
	err    error
}

type tickMsg struct{}

type toast struct {
	text  string
	level components.ToastLevel
	until time.Time // zero: stays until replaced
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	now  func() time.Time
	cur  cli.CurrencyFormatter

	// Data
	board    *pipeline.Board
	loaded   bool
	loadErr  error
	fetchSeq int

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	toast     toast

	// Departments tab
	search    textinput.Model
	searching bool
	cursor    int
	expand    pipeline.ExpandState

	// Payment form; draft survives a failed or cancelled attempt
	payForm  *huh.Form
	payVals  *PaymentValues
	payDraft contribution.Form
	paying   bool

	// Share form
	shareForm *huh.Form
	shareVals *shareValues

	// Setup wizard (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	interval := opts.Refresh
	if interval < time.Duration(config.MinRefreshIntervalSec)*time.Second {
		interval = 30 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	ti := textinput.New()
	ti.Placeholder = "department or contributor"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40

	cur, err := cli.NewCurrencyFormatter(opts.Static.Currency)
	if err != nil {
		cur = cli.KES
	}

	a := App{
		opts:            opts,
		now:             now,
		cur:             cur,
		fetchSeq:        1,
		autoRefresh:     opts.AutoRefresh,
		refreshInterval: interval,
		search:          ti,
		expand:          pipeline.ExpandState{},
		spinner:         sp,
		refreshing:      true,
		needSetup:       opts.NeedSetup,
	}

	if a.needSetup {
		a.openSetup()
	} else if opts.Prefill.Complete() {
		a.payDraft = opts.Prefill.Apply(a.payDraft)
		a.openPayment()
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.fetchCmd(a.fetchSeq),
		a.spinner.Tick,
		tickCmd(),
	}
	if f := a.activeForm(); f != nil {
		cmds = append(cmds, f.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if f := a.activeForm(); f != nil {
			return a.updateActiveForm(msg)
		}
		return a, nil

	case boardLoadedMsg:
		return a.handleBoard(msg), nil

	case paymentDoneMsg:
		return a.handlePayment(msg)

	case shareDoneMsg:
		a = a.handleShare(msg)
		return a, nil

	case tickMsg:
		now := a.now()
		if a.toast.text != "" && !a.toast.until.IsZero() && !now.Before(a.toast.until) {
			a.toast = toast{}
		}
		cmds := []tea.Cmd{tickCmd()}
		if a.autoRefresh && a.loaded && !a.refreshing && now.Sub(a.lastRefresh) >= a.refreshInterval {
			cmds = append(cmds, a.startRefresh())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	if a.activeForm() != nil {
		return a.updateActiveForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return a.handleMouse(msg)
	case tea.KeyMsg:
		if a.searching {
			return a.updateSearch(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		switch key {
		case "q":
			return a, tea.Quit
		default:
			a.showHelp = false
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "r":
		if a.refreshing {
			return a, nil
		}
		return a, a.startRefresh()
	case "a":
		a.autoRefresh = !a.autoRefresh
		return a, nil
	case "n":
		if a.paying {
			return a, nil
		}
		a.openPayment()
		return a, a.payForm.Init()
	case "/":
		a.activeTab = components.TabDepartments
		a.searching = true
		return a, a.search.Focus()
	case "esc":
		if a.search.Value() != "" {
			a.search.SetValue("")
			a.cursor = 0
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if a.activeTab == components.TabDepartments {
		rows := a.visibleRows()
		switch key {
		case "j", "down":
			if a.cursor < len(rows)-1 {
				a.cursor++
			}
			return a, nil
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
			return a, nil
		case "enter", " ":
			if a.cursor < len(rows) {
				a.expand = a.expand.Toggle(rows[a.cursor].Name)
			}
			return a, nil
		case "s":
			if a.cursor < len(rows) {
				a.openShare(rows[a.cursor])
				return a, a.shareForm.Init()
			}
			return a, nil
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// updateSearch handles key events while the search input has focus.
// Filtering is live; enter keeps the term, esc clears it.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	case "esc":
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.cursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.cursor = 0
	return a, cmd
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return a, nil
		}
		if msg.Y == 0 {
			if idx := a.tabAtX(msg.X); idx >= 0 {
				a.activeTab = idx
			}
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == components.TabDepartments && a.cursor < len(a.visibleRows())-1 {
			a.cursor++
		}
	case tea.MouseButtonWheelUp:
		if a.activeTab == components.TabDepartments && a.cursor > 0 {
			a.cursor--
		}
	}
	return a, nil
}

func (a App) handleBoard(msg boardLoadedMsg) App {
	if msg.seq != a.fetchSeq {
		a.opts.Log.Debug().Int("seq", msg.seq).Int("latest", a.fetchSeq).Msg("dropping stale fetch result")
		return a
	}
	a.refreshing = false
	a.lastRefresh = a.now()
	a.loaded = true

	if msg.err != nil {
		a.opts.Log.Warn().Err(msg.err).Msg("fetch failed")
		a.loadErr = msg.err
		a.setToast(toastFetchFailed, components.ToastError)
		return a
	}

	a.loadErr = nil
	a.board = msg.board
	if d := msg.board.Recent.Dropped; d > 0 {
		a.opts.Log.Warn().Int("dropped", d).Msg("transactions with malformed TransTime skipped")
	}
	if rows := a.visibleRows(); a.cursor >= len(rows) {
		a.cursor = max(len(rows)-1, 0)
	}
	return a
}

func (a App) handlePayment(msg paymentDoneMsg) (tea.Model, tea.Cmd) {
	a.paying = false
	if msg.err != nil {
		a.opts.Log.Warn().Err(msg.err).Msg("payment initiation failed")
		a.setToast(toastPayFailed, components.ToastError)
		return a, nil
	}

	ev := a.opts.Log.Info()
	if msg.result != nil {
		ev = ev.Str("request_id", msg.result.RequestID)
	}
	ev.Msg("payment initiated")

	a.setToast(toastCheckPhone, components.ToastSuccess)
	a.payDraft = contribution.Form{}
	if a.refreshing {
		return a, nil
	}
	return a, a.startRefresh()
}

func (a App) handleShare(msg shareDoneMsg) App {
	if msg.err != nil {
		a.opts.Log.Warn().Err(msg.err).Msg("share failed")
		a.setToast(toastShareFailed, components.ToastError)
		return a
	}
	a.opts.Log.Info().Str("strategy", msg.result.Strategy).Msg("shared")
	if msg.result.Notice != "" {
		a.setToast(msg.result.Notice, components.ToastSuccess)
	}
	return a
}

func (a *App) setToast(text string, level components.ToastLevel) {
	a.toast = toast{text: text, level: level, until: a.now().Add(toastDuration)}
}

// startRefresh issues a new fetch. Results of earlier fetches still in
// flight are ignored when they arrive.
func (a *App) startRefresh() tea.Cmd {
	a.fetchSeq++
	a.refreshing = true
	return a.fetchCmd(a.fetchSeq)
}

func (a App) fetchCmd(seq int) tea.Cmd {
	f, st, timeout := a.opts.Fetcher, a.opts.Static, a.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		board, err := pipeline.Load(ctx, f, st)
		return boardLoadedMsg{seq: seq, board: board, err: err}
	}
}

func (a App) paymentCmd(req model.ContributionRequest) tea.Cmd {
	p, timeout := a.opts.Payer, a.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := p.InitiatePayment(ctx, req)
		return paymentDoneMsg{result: res, err: err}
	}
}

func (a App) shareCmd(p share.Payload) tea.Cmd {
	s := a.opts.Sharer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.Share(ctx, p)
		return shareDoneMsg{result: res, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// visibleRows is the department list after the search filter.
func (a App) visibleRows() []model.DepartmentRow {
	if a.board == nil {
		return nil
	}
	return a.board.Departments(a.search.Value())
}

func (a App) activeForm() *huh.Form {
	switch {
	case a.setupForm != nil:
		return a.setupForm
	case a.payForm != nil:
		return a.payForm
	case a.shareForm != nil:
		return a.shareForm
	}
	return nil
}

func (a App) updateActiveForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case a.setupForm != nil:
		return a.updateSetupForm(msg)
	case a.payForm != nil:
		return a.updatePaymentForm(msg)
	default:
		return a.updateShareForm(msg)
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if f := a.activeForm(); f != nil {
		return a.viewForm(f)
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  mchango needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := titleStyle.Render(a.opts.Static.Organization+" Contributions") + "\n\n" +
		a.spinner.View() + mutedStyle.Render(" Fetching contribution data...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm(f *huh.Form) string {
	t := theme.Active
	cw := a.contentWidth()

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	title := titleStyle.Render(a.formTitle())

	body := lipgloss.JoinVertical(lipgloss.Left, title, "", f.View())
	body = lipgloss.NewStyle().Width(cw).Padding(1, 2).Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Top, body,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) formTitle() string {
	switch {
	case a.setupForm != nil:
		return "Welcome to mchango"
	case a.payForm != nil:
		return "New Contribution"
	default:
		return "Share Contribution Details"
	}
}

func (a App) viewHelp() string {
	t := theme.Active
	w, h := a.width, a.height

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	titleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)

	bindings := []struct{ key, desc string }{
		{"p d t", "Progress, Departments, Recent"},
		{"← → tab", "Switch tab"},
		{"/", "Search departments and contributors"},
		{"esc", "Clear search"},
		{"j k ↑ ↓", "Move selection"},
		{"enter", "Show more / show less contributors"},
		{"s", "Share the selected department"},
		{"n", "New contribution (STK push)"},
		{"r", "Refresh now"},
		{"a", "Toggle auto refresh"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	for _, kb := range bindings {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-10s", kb.key)) + descStyle.Render(kb.desc) + "\n")
	}

	card := components.ContentCard("", strings.TrimRight(b.String(), "\n"), 56, true)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar plus the paybill banner
	bannerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		bannerStyle.Render(" "+PaybillBanner(a.opts.Static.Paybill))

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, components.Status{
		LastUpdated: a.lastRefresh,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Toast:       a.toast.text,
		ToastLevel:  a.toast.level,
	})

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case components.TabProgress:
		content = a.renderProgressTab(cw)
	case components.TabDepartments:
		content = a.renderDepartmentsTab(cw, contentH)
	case components.TabRecent:
		content = a.renderRecentTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, fill the background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
