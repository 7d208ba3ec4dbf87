package share

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/mchango/internal/config"
)

type fakeStrategy struct {
	name      string
	available bool
	err       error
	calls     int
	sawImage  bool
}

func (f *fakeStrategy) Name() string    { return f.name }
func (f *fakeStrategy) Available() bool { return f.available }

func (f *fakeStrategy) Share(_ context.Context, _ Payload, imagePath string) (string, error) {
	f.calls++
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			f.sawImage = true
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.name + " ok", nil
}

func newTestSharer(t *testing.T, strategies ...Strategy) *Sharer {
	t.Helper()
	s := NewSharer(zerolog.Nop(), strategies...)
	s.tempDir = t.TempDir()
	return s
}

func assertNoTemplates(t *testing.T, s *Sharer) {
	t.Helper()
	left, err := filepath.Glob(filepath.Join(s.tempDir, "mchango-share-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("template files left behind: %v", left)
	}
}

func TestShareFirstSuccessWins(t *testing.T) {
	img := &fakeStrategy{name: StrategyImage, available: true}
	text := &fakeStrategy{name: StrategyText, available: true}
	s := newTestSharer(t, img, text)

	res, err := s.Share(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if res.Strategy != StrategyImage || res.Notice != "image ok" {
		t.Errorf("result = %+v", res)
	}
	if !img.sawImage {
		t.Error("image strategy did not receive a rendered card")
	}
	if text.calls != 0 {
		t.Error("later strategy ran after success")
	}
	assertNoTemplates(t, s)
}

func TestShareFallsThroughFailures(t *testing.T) {
	img := &fakeStrategy{name: StrategyImage, available: true, err: errors.New("files not supported")}
	text := &fakeStrategy{name: StrategyText, available: true, err: errors.New("cancelled")}
	clip := &fakeStrategy{name: StrategyClipboard, available: true}
	s := newTestSharer(t, img, text, clip)

	res, err := s.Share(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if res.Strategy != StrategyClipboard {
		t.Errorf("Strategy = %q, want clipboard", res.Strategy)
	}
	if img.calls != 1 || text.calls != 1 || clip.calls != 1 {
		t.Errorf("calls = %d/%d/%d", img.calls, text.calls, clip.calls)
	}
	assertNoTemplates(t, s)
}

func TestShareSkipsUnavailable(t *testing.T) {
	img := &fakeStrategy{name: StrategyImage}
	clip := &fakeStrategy{name: StrategyClipboard, available: true}
	s := newTestSharer(t, img, clip)

	res, err := s.Share(context.Background(), testPayload())
	if err != nil || res.Strategy != StrategyClipboard {
		t.Fatalf("Share = %+v, %v", res, err)
	}
	if img.calls != 0 {
		t.Error("unavailable strategy was called")
	}
}

func TestShareAllFail(t *testing.T) {
	boom := errors.New("boom")
	s := newTestSharer(t,
		&fakeStrategy{name: StrategyText, available: true, err: boom},
		&fakeStrategy{name: StrategyClipboard, available: true, err: boom},
	)
	_, err := s.Share(context.Background(), testPayload())
	if !errors.Is(err, ErrAllFailed) || !errors.Is(err, boom) {
		t.Errorf("err = %v, want ErrAllFailed wrapping boom", err)
	}
	assertNoTemplates(t, s)
}

func TestShareNothingAvailable(t *testing.T) {
	s := newTestSharer(t, &fakeStrategy{name: StrategyImage})
	if _, err := s.Share(context.Background(), testPayload()); !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
	assertNoTemplates(t, s)
}

func TestClipboardStrategy(t *testing.T) {
	var got string
	c := &ClipboardStrategy{write: func(s string) error { got = s; return nil }}
	if !c.Available() {
		t.Fatal("clipboard with writer should be available")
	}
	notice, err := c.Share(context.Background(), testPayload(), "")
	if err != nil {
		t.Fatal(err)
	}
	if notice != ClipboardNotice {
		t.Errorf("notice = %q", notice)
	}
	if got != testPayload().Text() {
		t.Errorf("clipboard = %q", got)
	}
}

func TestCommandStrategy(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out := filepath.Join(t.TempDir(), "stdin.txt")
	c := &CommandStrategy{Command: []string{"sh", "-c", `cat > "$0"`, out}}
	if !c.Available() || c.Name() != StrategyText {
		t.Fatalf("Available=%v Name=%q", c.Available(), c.Name())
	}
	if _, err := c.Share(context.Background(), testPayload(), ""); err != nil {
		t.Fatalf("Share: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != testPayload().Message() {
		t.Errorf("stdin = %q", data)
	}
}

func TestCommandStrategyImageNeedsCard(t *testing.T) {
	c := &CommandStrategy{Command: []string{"true"}, AttachImage: true}
	if _, err := c.Share(context.Background(), testPayload(), ""); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}

func TestCommandStrategyUnavailable(t *testing.T) {
	if (&CommandStrategy{}).Available() {
		t.Error("empty command should be unavailable")
	}
	if (&CommandStrategy{Command: []string{"mchango-no-such-binary"}}).Available() {
		t.Error("missing binary should be unavailable")
	}
}

func TestFromConfigOrder(t *testing.T) {
	s := FromConfig(config.ShareConfig{Command: "termux-share -a send", Strategies: []string{"text", "clipboard", "bogus"}}, zerolog.Nop())
	if len(s.strategies) != 2 {
		t.Fatalf("len = %d, want 2", len(s.strategies))
	}
	if s.strategies[0].Name() != StrategyText || s.strategies[1].Name() != StrategyClipboard {
		t.Errorf("order = %s, %s", s.strategies[0].Name(), s.strategies[1].Name())
	}
	cs := s.strategies[0].(*CommandStrategy)
	if len(cs.Command) != 3 || cs.Command[0] != "termux-share" {
		t.Errorf("Command = %v", cs.Command)
	}

	def := FromConfig(config.ShareConfig{}, zerolog.Nop())
	if len(def.strategies) != 3 {
		t.Errorf("default chain len = %d", len(def.strategies))
	}
}
