package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/mchango/internal/config"
)

// ErrAlreadyRunning is returned by Claim when a live daemon owns the run file.
var ErrAlreadyRunning = errors.New("daemon already running")

// RunFile describes a running daemon: which process it is, where it listens
// and what it polls. `daemon status` and `daemon stop` locate it through
// this file.
type RunFile struct {
	PID        int       `json:"pid"`
	Addr       string    `json:"addr"`
	StartedAt  time.Time `json:"started_at"`
	ConfigPath string    `json:"config_path"`
	API        string    `json:"api"`
	Interval   string    `json:"interval"`
	AMQP       string    `json:"amqp,omitempty"`
}

// AMQPTarget describes where contributions are published, with the broker
// password redacted. Empty when publishing is disabled.
func AMQPTarget(cfg config.AMQPConfig) string {
	if cfg.URL == "" {
		return ""
	}
	broker := "(unparseable url)"
	if u, err := url.Parse(cfg.URL); err == nil {
		broker = u.Redacted()
	}
	return fmt.Sprintf("%s exchange=%s key=%s", broker, cfg.Exchange, cfg.RoutingKey)
}

// ReadRunFile loads the run file at path.
func ReadRunFile(path string) (RunFile, error) {
	var rf RunFile
	data, err := os.ReadFile(path) //nolint:gosec // run file path is configured by the local user
	if err != nil {
		return rf, err
	}
	if err := json.Unmarshal(data, &rf); err != nil {
		return rf, fmt.Errorf("parsing %s: %w", path, err)
	}
	if rf.PID <= 0 {
		return rf, fmt.Errorf("invalid pid in %s", path)
	}
	return rf, nil
}

// Alive reports whether the recorded process still exists.
func (rf RunFile) Alive() bool {
	return processAlive(rf.PID)
}

// Claim records rf at path for the current process. A run file left by a
// dead process is replaced. The returned release removes the file, unless
// another daemon has claimed it since.
func Claim(path string, rf RunFile) (release func(), err error) {
	if prev, err := ReadRunFile(path); err == nil && prev.Alive() && prev.PID != rf.PID {
		return nil, fmt.Errorf("%w (pid %d on %s)", ErrAlreadyRunning, prev.PID, prev.Addr)
	}
	if err := writeRunFile(path, rf); err != nil {
		return nil, err
	}
	return func() {
		if cur, err := ReadRunFile(path); err == nil && cur.PID == rf.PID {
			_ = os.Remove(path)
		}
	}, nil
}

// writeRunFile replaces path atomically so readers never see a partial file.
func writeRunFile(path string, rf RunFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return os.Rename(tmp, path)
}

// FetchStatus fetches /v1/status from the recorded address.
func (rf RunFile) FetchStatus(ctx context.Context, client *http.Client) (Status, error) {
	var st Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+rf.Addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed status: %w", err)
	}
	return st, nil
}

// Reconcile compares the run file with what the address actually serves.
// It returns a description of the mismatch, or "" when they agree.
func (rf RunFile) Reconcile(st Status) string {
	if st.PID != 0 && st.PID != rf.PID {
		return fmt.Sprintf("%s is served by pid %d, not pid %d", rf.Addr, st.PID, rf.PID)
	}
	if !rf.StartedAt.IsZero() && !st.StartedAt.IsZero() &&
		st.StartedAt.Sub(rf.StartedAt).Abs() > 2*time.Second {
		return fmt.Sprintf("%s was started at %s, run file says %s",
			rf.Addr, st.StartedAt.Local().Format(time.RFC3339), rf.StartedAt.Local().Format(time.RFC3339))
	}
	return ""
}

// WaitExit polls until the recorded process exits or ctx is done.
func (rf RunFile) WaitExit(ctx context.Context) error {
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	for rf.Alive() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not exit: %w", rf.PID, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
