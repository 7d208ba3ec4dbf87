package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/mchango/internal/config"
)

// Strategy names, in default fallback order.
const (
	StrategyImage     = "image"
	StrategyText      = "text"
	StrategyClipboard = "clipboard"
)

// ClipboardNotice is shown when the clipboard fallback is used.
const ClipboardNotice = "Share info copied to clipboard!"

var (
	// ErrNoImage is returned by the image strategy when no card was rendered.
	ErrNoImage = errors.New("share: no image to attach")
	// ErrAllFailed is returned when no strategy delivered the payload.
	ErrAllFailed = errors.New("share: every strategy failed")
)

// Strategy is one way of handing a payload to the user.
type Strategy interface {
	Name() string
	// Available reports whether the platform supports the strategy at all.
	Available() bool
	// Share delivers p. imagePath is the rendered card, "" if rendering failed.
	Share(ctx context.Context, p Payload, imagePath string) (notice string, err error)
}

// Result reports which strategy delivered the payload.
type Result struct {
	Strategy string
	Notice   string
}

// Sharer runs strategies in order until one succeeds.
type Sharer struct {
	strategies []Strategy
	log        zerolog.Logger
	tempDir    string
}

// NewSharer returns a sharer over the given strategies.
func NewSharer(log zerolog.Logger, strategies ...Strategy) *Sharer {
	return &Sharer{strategies: strategies, log: log}
}

// FromConfig builds the chain named by cfg.Strategies. Unknown names are
// skipped; config validation reports them.
func FromConfig(cfg config.ShareConfig, log zerolog.Logger) *Sharer {
	cmd := strings.Fields(cfg.Command)
	names := cfg.Strategies
	if len(names) == 0 {
		names = []string{StrategyImage, StrategyText, StrategyClipboard}
	}

	var chain []Strategy
	for _, n := range names {
		switch n {
		case StrategyImage:
			chain = append(chain, &CommandStrategy{Command: cmd, AttachImage: true})
		case StrategyText:
			chain = append(chain, &CommandStrategy{Command: cmd})
		case StrategyClipboard:
			chain = append(chain, &ClipboardStrategy{})
		}
	}
	return NewSharer(log, chain...)
}

// Share renders the card to a temporary file, walks the chain and always
// removes the file before returning. Individual failures are logged; an
// error is returned only when nothing succeeded.
func (s *Sharer) Share(ctx context.Context, p Payload) (Result, error) {
	imagePath, cleanup, err := s.writeTemplate(p)
	defer cleanup()
	if err != nil {
		s.log.Warn().Err(err).Msg("share card rendering failed")
	}

	var errs []error
	tried := 0
	for _, st := range s.strategies {
		if !st.Available() {
			s.log.Debug().Str("strategy", st.Name()).Msg("share strategy unavailable")
			continue
		}
		tried++
		notice, err := st.Share(ctx, p, imagePath)
		if err == nil {
			return Result{Strategy: st.Name(), Notice: notice}, nil
		}
		s.log.Warn().Err(err).Str("strategy", st.Name()).Msg("share strategy failed")
		errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	if tried == 0 {
		errs = append(errs, errors.New("no share strategy available"))
	}
	return Result{}, errors.Join(append([]error{ErrAllFailed}, errs...)...)
}

// writeTemplate renders the card into a temp file. cleanup is never nil.
func (s *Sharer) writeTemplate(p Payload) (string, func(), error) {
	noop := func() {}
	f, err := os.CreateTemp(s.tempDir, "mchango-share-*.png")
	if err != nil {
		return "", noop, fmt.Errorf("share: creating template: %w", err)
	}
	cleanup := func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Warn().Err(rmErr).Str("path", f.Name()).Msg("removing share template")
		}
	}

	if err := RenderPNG(f, p); err != nil {
		f.Close()
		return "", cleanup, err
	}
	if err := f.Close(); err != nil {
		return "", cleanup, fmt.Errorf("share: writing template: %w", err)
	}
	return f.Name(), cleanup, nil
}

// CommandStrategy hands the payload to an external share command such as
// termux-share. The message goes to stdin; the card, when attached, is
// passed as the last argument.
type CommandStrategy struct {
	Command     []string
	AttachImage bool
}

// Name implements Strategy.
func (c *CommandStrategy) Name() string {
	if c.AttachImage {
		return StrategyImage
	}
	return StrategyText
}

// Available implements Strategy.
func (c *CommandStrategy) Available() bool {
	if len(c.Command) == 0 {
		return false
	}
	_, err := exec.LookPath(c.Command[0])
	return err == nil
}

// Share implements Strategy.
func (c *CommandStrategy) Share(ctx context.Context, p Payload, imagePath string) (string, error) {
	args := append([]string(nil), c.Command[1:]...)
	if c.AttachImage {
		if imagePath == "" {
			return "", ErrNoImage
		}
		args = append(args, imagePath)
	}

	cmd := exec.CommandContext(ctx, c.Command[0], args...) //nolint:gosec // command comes from user configuration
	cmd.Stdin = strings.NewReader(p.Message())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", c.Command[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", c.Command[0], err)
	}
	return "Shared via " + c.Command[0], nil
}

// ClipboardStrategy copies the text snippet to the system clipboard.
type ClipboardStrategy struct {
	write func(string) error // nil means clipboard.WriteAll
}

// Name implements Strategy.
func (c *ClipboardStrategy) Name() string { return StrategyClipboard }

// Available implements Strategy.
func (c *ClipboardStrategy) Available() bool {
	return c.write != nil || !clipboard.Unsupported
}

// Share implements Strategy.
func (c *ClipboardStrategy) Share(_ context.Context, p Payload, _ string) (string, error) {
	write := c.write
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(p.Text()); err != nil {
		return "", fmt.Errorf("share: clipboard: %w", err)
	}
	return ClipboardNotice, nil
}
