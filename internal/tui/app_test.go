package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/mchango/internal/api"
	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/share"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type fakeFetcher struct {
	pub *model.Publicity
	err error
}

func (f fakeFetcher) FetchPublicity(context.Context) (*model.Publicity, error) {
	return f.pub, f.err
}

type fakePayer struct {
	got []model.ContributionRequest
	err error
}

func (p *fakePayer) InitiatePayment(_ context.Context, req model.ContributionRequest) (*api.PaymentResult, error) {
	p.got = append(p.got, req)
	if p.err != nil {
		return nil, p.err
	}
	return &api.PaymentResult{RequestID: "req-1"}, nil
}

type fakeSharer struct {
	got []share.Payload
}

func (s *fakeSharer) Share(_ context.Context, p share.Payload) (share.Result, error) {
	s.got = append(s.got, p)
	return share.Result{Strategy: share.StrategyClipboard, Notice: share.ClipboardNotice}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testStatic() config.Static {
	return config.Static{
		Organization: "JKUAT CU",
		Paybill:      "921961",
		Currency:     "KES",
		Cutoff:       time.Date(2024, 11, 5, 0, 0, 0, 0, time.Local),
		RecentLimit:  20,
		Directory:    directory.New(map[string]string{"1000": "Alpha", "1001": "Beta"}),
		Targets:      model.Targets{Overall: 1000000, Default: 100000},
	}
}

func testPublicity() *model.Publicity {
	return &model.Publicity{
		Transactions: []model.Transaction{
			{DepartmentName: "Alpha", BillRefNumber: "1000", UserName: "alice", TransAmount: 5000, TransTime: "20241106143000"},
			{DepartmentName: "Beta", BillRefNumber: "1001", UserName: "bob", TransAmount: 300, TransTime: "20241104090000"},
		},
		AccountTotals: model.AccountTotals{"Alpha": 5000, "Beta": 1200},
		UserTotals: model.UserTotals{
			"Alpha": {"alice": 5000},
			"Beta":  {"bob": 300, "carol": 200, "dave": 200, "erin": 200, "frank": 200, "grace": 100},
		},
		GrandTotal: 6200,
	}
}

func newTestApp(t *testing.T, opts Options) (App, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 11, 10, 12, 0, 0, 0, time.Local)}
	opts.Static = testStatic()
	opts.Now = c.now
	if opts.Fetcher == nil {
		opts.Fetcher = fakeFetcher{pub: testPublicity()}
	}
	a := NewApp(opts)
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 60})
	return a, c
}

func loaded(t *testing.T, a App) App {
	t.Helper()
	board := pipeline.Build(*testPublicity(), a.opts.Static, a.now())
	return update(t, a, boardLoadedMsg{seq: a.fetchSeq, board: board})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFetchCmdLoadsBoard(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	msg := a.fetchCmd(a.fetchSeq)()
	a = update(t, a, msg)
	if a.board == nil {
		t.Fatal("board not set after fetch")
	}
	if a.refreshing {
		t.Error("refreshing should be cleared")
	}
	if len(a.board.Recent.Transactions) != 1 {
		t.Errorf("recent = %d, want 1 (cutoff excludes the Nov 4 transaction)", len(a.board.Recent.Transactions))
	}
}

func TestStaleFetchResultDropped(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	oldSeq := a.fetchSeq
	a.startRefresh()

	board := pipeline.Build(*testPublicity(), a.opts.Static, a.now())
	a = update(t, a, boardLoadedMsg{seq: oldSeq, board: board})
	if a.board != nil {
		t.Fatal("stale result should be ignored")
	}
	if !a.refreshing {
		t.Error("latest fetch still in flight")
	}

	a = update(t, a, boardLoadedMsg{seq: a.fetchSeq, board: board})
	if a.board == nil {
		t.Fatal("latest result should be applied")
	}
}

func TestFetchErrorKeepsPreviousBoard(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)
	prev := a.board

	a.startRefresh()
	a = update(t, a, boardLoadedMsg{seq: a.fetchSeq, err: errors.New("boom")})
	if a.board != prev {
		t.Error("previous board should be kept on failure")
	}
	if a.toast.text != toastFetchFailed || a.toast.level != components.ToastError {
		t.Errorf("toast = %+v", a.toast)
	}
	if a.refreshing {
		t.Error("refreshing should be cleared after failure")
	}
}

func TestToastExpiresOnTick(t *testing.T) {
	a, c := newTestApp(t, Options{})
	a = loaded(t, a)
	a.setToast("hello", components.ToastInfo)

	c.t = c.t.Add(time.Second)
	a = update(t, a, tickMsg{})
	if a.toast.text == "" {
		t.Fatal("toast cleared too early")
	}

	c.t = c.t.Add(toastDuration)
	a = update(t, a, tickMsg{})
	if a.toast.text != "" {
		t.Errorf("toast %q should have expired", a.toast.text)
	}
}

func TestAutoRefreshAfterInterval(t *testing.T) {
	a, c := newTestApp(t, Options{AutoRefresh: true, Refresh: 30 * time.Second})
	a = loaded(t, a)
	seq := a.fetchSeq

	c.t = c.t.Add(10 * time.Second)
	a = update(t, a, tickMsg{})
	if a.fetchSeq != seq {
		t.Fatal("refreshed before the interval elapsed")
	}

	c.t = c.t.Add(25 * time.Second)
	a = update(t, a, tickMsg{})
	if a.fetchSeq != seq+1 || !a.refreshing {
		t.Errorf("expected a refresh: seq=%d refreshing=%v", a.fetchSeq, a.refreshing)
	}
}

func TestManualRefreshIgnoredWhileRefreshing(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)
	a = update(t, a, keyMsg("r"))
	seq := a.fetchSeq
	a = update(t, a, keyMsg("r"))
	if a.fetchSeq != seq {
		t.Error("second r should not start another fetch")
	}
}

func TestTabKeys(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)
	for key, want := range map[string]int{"d": components.TabDepartments, "t": components.TabRecent, "p": components.TabProgress} {
		a = update(t, a, keyMsg(key))
		if a.activeTab != want {
			t.Errorf("key %s -> tab %d, want %d", key, a.activeTab, want)
		}
	}
}

func TestSearchByContributor(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)

	a = update(t, a, keyMsg("/"))
	if !a.searching || a.activeTab != components.TabDepartments {
		t.Fatal("/ should focus search on the departments tab")
	}
	a = update(t, a, keyMsg("ALICE"))
	rows := a.visibleRows()
	if len(rows) != 1 || rows[0].Name != "Alpha" {
		t.Fatalf("rows = %+v, want only Alpha", rows)
	}

	a = update(t, a, keyMsg("enter"))
	if a.searching {
		t.Error("enter should leave search mode")
	}
	if len(a.visibleRows()) != 1 {
		t.Error("filter should persist after enter")
	}

	a = update(t, a, keyMsg("esc"))
	if len(a.visibleRows()) != 2 {
		t.Error("esc should clear the filter")
	}
}

func TestEnterTogglesExpand(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)
	a = update(t, a, keyMsg("d"))
	a = update(t, a, keyMsg("down")) // Beta has six contributors

	view := a.View()
	if !strings.Contains(view, "Show More (1 more)") {
		t.Fatalf("collapsed view missing Show More:\n%s", view)
	}

	a = update(t, a, keyMsg("enter"))
	if !a.expand.Expanded("Beta") {
		t.Fatal("enter should expand the selected department")
	}
	if !strings.Contains(a.View(), "Show Less") {
		t.Error("expanded view missing Show Less")
	}

	a = update(t, a, keyMsg("enter"))
	if a.expand.Expanded("Beta") {
		t.Error("second enter should collapse")
	}
}

func TestViewShowsBannerAndDepartment(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)

	view := a.View()
	if !strings.Contains(view, PaybillBanner("921961")) {
		t.Error("paybill banner missing")
	}
	if !strings.Contains(view, "Overall Progress") {
		t.Error("progress tab missing overall bar")
	}

	a = update(t, a, keyMsg("d"))
	view = a.View()
	for _, want := range []string{"Alpha (Account: 1000)", "KES 5,000.00", "alice"} {
		if !strings.Contains(view, want) {
			t.Errorf("departments view missing %q", want)
		}
	}

	a = update(t, a, keyMsg("t"))
	if !strings.Contains(a.View(), "November 6, 2024 at 02:30 PM") {
		t.Error("recent view missing formatted date")
	}
}

func TestNarrowTerminal(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("expected narrow terminal message")
	}
}

func TestPaymentFormSubmit(t *testing.T) {
	payer := &fakePayer{}
	a, _ := newTestApp(t, Options{Payer: payer})
	a = loaded(t, a)

	a = update(t, a, keyMsg("n"))
	if a.payForm == nil {
		t.Fatal("n should open the payment form")
	}
	a.payVals.Form = contribution.Form{Phone: "254712345678", Amount: "500", Account: "1000", UseCustomName: true, CustomName: "Jane"}
	a.payVals.Confirmed = true
	a.payForm.State = huh.StateCompleted

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if a.payForm != nil {
		t.Fatal("form should close on completion")
	}
	if !a.paying || a.toast.text != toastInitiating {
		t.Fatalf("paying=%v toast=%q", a.paying, a.toast.text)
	}
	if cmd == nil {
		t.Fatal("expected payment command")
	}

	a = update(t, a, cmd())
	if len(payer.got) != 1 {
		t.Fatalf("payer called %d times", len(payer.got))
	}
	if got := payer.got[0].AccountReference; got != "1000#Jane" {
		t.Errorf("account reference = %q", got)
	}
	if a.toast.text != toastCheckPhone {
		t.Errorf("toast = %q, want %q", a.toast.text, toastCheckPhone)
	}
	if !a.refreshing {
		t.Error("successful payment should trigger a refresh")
	}
	if a.payDraft != (contribution.Form{}) {
		t.Error("draft should be cleared after success")
	}
}

func TestPaymentFailureKeepsDraft(t *testing.T) {
	a, _ := newTestApp(t, Options{Payer: &fakePayer{err: api.ErrUnavailable}})
	a = loaded(t, a)
	a.payDraft = contribution.Form{Phone: "254712345678", Amount: "500", Account: "1000"}

	a = update(t, a, paymentDoneMsg{err: api.ErrUnavailable})
	if a.toast.text != toastPayFailed {
		t.Errorf("toast = %q", a.toast.text)
	}

	a.openPayment()
	if a.payVals.Phone != "254712345678" || a.payVals.Amount != "500" {
		t.Errorf("reopened form lost values: %+v", a.payVals.Form)
	}
}

func TestPaymentFormCancelledKeepsValues(t *testing.T) {
	a, _ := newTestApp(t, Options{Payer: &fakePayer{}})
	a = loaded(t, a)
	a = update(t, a, keyMsg("n"))
	a.payVals.Phone = "254700000001"
	a.payForm.State = huh.StateAborted

	a = update(t, a, keyMsg("x"))
	if a.payForm != nil {
		t.Fatal("form should close when aborted")
	}
	if a.payDraft.Phone != "254700000001" {
		t.Errorf("draft phone = %q", a.payDraft.Phone)
	}
}

func TestPrefillOpensPaymentForm(t *testing.T) {
	a, _ := newTestApp(t, Options{Prefill: contribution.Prefill{Amount: "250", Account: "1001", Name: "Grace"}})
	if a.payForm == nil {
		t.Fatal("complete prefill should open the payment form")
	}
	if a.payVals.Amount != "250" || a.payVals.Account != "1001" || !a.payVals.UseCustomName {
		t.Errorf("prefill not applied: %+v", a.payVals.Form)
	}
}

func TestOpenPaymentPreselectsDepartment(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = loaded(t, a)
	a = update(t, a, keyMsg("d"))
	a = update(t, a, keyMsg("down"))
	a.openPayment()
	if a.payVals.Account != "1001" {
		t.Errorf("account = %q, want the selected department's 1001", a.payVals.Account)
	}
}

func TestShareSelectedDepartment(t *testing.T) {
	sharer := &fakeSharer{}
	a, _ := newTestApp(t, Options{Sharer: sharer})
	a = loaded(t, a)
	a = update(t, a, keyMsg("d"))
	a = update(t, a, keyMsg("s"))
	if a.shareForm == nil {
		t.Fatal("s should open the share form")
	}
	a.shareVals.Amount = "1000"
	a.shareForm.State = huh.StateCompleted

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if cmd == nil {
		t.Fatal("expected share command")
	}
	a = update(t, a, cmd())
	if len(sharer.got) != 1 {
		t.Fatalf("sharer called %d times", len(sharer.got))
	}
	p := sharer.got[0]
	if p.AccountReference != "1000" || p.Amount != 1000 || p.Paybill != "921961" {
		t.Errorf("payload = %+v", p)
	}
	if a.toast.text != share.ClipboardNotice {
		t.Errorf("toast = %q", a.toast.text)
	}
}

func TestShareWithoutAmount(t *testing.T) {
	sharer := &fakeSharer{}
	a, _ := newTestApp(t, Options{Sharer: sharer})
	a = loaded(t, a)
	a = update(t, a, keyMsg("d"))
	a = update(t, a, keyMsg("s"))
	if a.shareForm == nil {
		t.Fatal("s should open the share form")
	}
	a.shareForm.State = huh.StateCompleted

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if cmd == nil {
		t.Fatal("an empty amount should still share")
	}
	_ = update(t, a, cmd())
	if len(sharer.got) != 1 || sharer.got[0].Amount != 0 {
		t.Fatalf("shared %+v, want one payload with amount 0", sharer.got)
	}
}

func TestShareUnassignedDepartmentRefused(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a.openShare(model.DepartmentRow{Name: "Ghost", Account: directory.NotAssigned})
	if a.shareForm != nil {
		t.Error("department without an account number should not open the share form")
	}
	if a.toast.level != components.ToastError {
		t.Error("expected an error toast")
	}
}

func TestSetupSavesConfig(t *testing.T) {
	path := t.TempDir() + "/config.toml"
	t.Cleanup(func() { theme.SetActive(theme.FlexokiDark.Name) })
	reconnected := false
	a, _ := newTestApp(t, Options{
		NeedSetup:  true,
		Config:     config.DefaultConfig(),
		ConfigPath: path,
		Reconnect: func(cfg config.Config) (pipeline.Fetcher, Payer) {
			reconnected = cfg.API.BaseURL == "https://api.example.org"
			return fakeFetcher{pub: testPublicity()}, &fakePayer{}
		},
	})
	if a.setupForm == nil {
		t.Fatal("setup wizard should open on first run")
	}
	a.setupVals.BaseURL = "https://api.example.org"
	a.setupVals.PaymentURL = "https://api.example.org/stk"
	a.setupVals.Theme = "campus"
	a.setupForm.State = huh.StateCompleted

	seq := a.fetchSeq
	a = update(t, a, keyMsg("x"))
	if a.setupForm != nil || a.needSetup {
		t.Fatal("setup should be finished")
	}
	if !reconnected {
		t.Error("Reconnect not called with the new endpoints")
	}
	if a.fetchSeq != seq+1 {
		t.Error("setup should refetch")
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.PaymentURL != "https://api.example.org/stk" || cfg.Appearance.Theme != "campus" {
		t.Errorf("saved config = %+v", cfg.API)
	}
}

func TestPaymentSummary(t *testing.T) {
	v := &PaymentValues{Form: contribution.Form{Phone: "254712345678", Amount: "500", Account: "1000", UseCustomName: true, CustomName: " Jane "}}
	got := v.Summary(testStatic().Directory)
	want := "KES 500 to Alpha (Account: 1000) from 254712345678 as Jane"
	if got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestMoreLabel(t *testing.T) {
	if got := MoreLabel(3, false); got != "Show More (3 more)" {
		t.Errorf("collapsed = %q", got)
	}
	if got := MoreLabel(0, true); got != "Show Less" {
		t.Errorf("expanded = %q", got)
	}
}
