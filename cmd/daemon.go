package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/daemon"
	"github.com/theirongolddev/mchango/internal/logging"
	"github.com/theirongolddev/mchango/internal/notify"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRunFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonStopTimeout  time.Duration
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll contributions in the background and serve them over HTTP/SSE",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the running daemon polls and what it has seen",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon, closing its event streams and AMQP publisher",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonRunFile, "run-file", filepath.Join(config.CacheDir(), "mchangod.json"), "Run file locating the daemon")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.CacheDir(), "mchangod.log"), "Log file for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonStopCmd.Flags().DurationVar(&flagDaemonStopTimeout, "timeout", 10*time.Second, "How long to wait for the daemon to exit")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("invalid daemon launch mode")
	case flagDaemonDetach:
		return startDaemonDetached(cmd.Context())
	default:
		return runDaemonForeground()
	}
}

// startDaemonDetached re-executes mchango as a child and waits until the
// child has claimed the run file, so the address printed is the real one.
func startDaemonDetached(ctx context.Context) error {
	if rf, err := daemon.ReadRunFile(flagDaemonRunFile); err == nil && rf.Alive() {
		return fmt.Errorf("%w (pid %d on %s)", daemon.ErrAlreadyRunning, rf.PID, rf.Addr)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(withoutDetach(os.Args[1:]), "--child")...) //nolint:gosec // re-exec of the current binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- child.Wait() }()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if rf, err := daemon.ReadRunFile(flagDaemonRunFile); err == nil && rf.PID == child.Process.Pid {
			fmt.Printf("  Started daemon (pid %d)\n", rf.PID)
			fmt.Printf("  Status: http://%s/v1/status\n", rf.Addr)
			fmt.Printf("  Log:    %s\n", flagDaemonLogFile)
			return nil
		}
		select {
		case err := <-exited:
			return fmt.Errorf("daemon exited during startup (%v), see %s", err, flagDaemonLogFile)
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not report ready, see %s", child.Process.Pid, flagDaemonLogFile)
		case <-ticker.C:
		}
	}
}

func runDaemonForeground() error {
	path := configPath()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	st, err := cfg.Static()
	if err != nil {
		return err
	}
	if err := config.CheckURL(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}

	addr := flagDaemonAddr
	if addr == "" {
		addr = cfg.Daemon.Addr
	}
	interval := flagDaemonInterval
	if interval <= 0 {
		interval = cfg.RefreshInterval()
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, err := logging.New(os.Stdout, level, false)
	if err != nil {
		return err
	}

	rf := daemon.RunFile{
		PID:        os.Getpid(),
		Addr:       addr,
		StartedAt:  time.Now(),
		ConfigPath: path,
		API:        cfg.API.BaseURL,
		Interval:   interval.String(),
		AMQP:       daemon.AMQPTarget(cfg.Daemon.AMQP),
	}
	release, err := daemon.Claim(flagDaemonRunFile, rf)
	if err != nil {
		return err
	}
	defer release()

	pub, err := notify.New(cfg.Daemon.AMQP, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("closing amqp publisher")
			return
		}
		log.Info().Msg("publisher closed")
	}()

	svc := daemon.New(daemon.Config{
		Interval:     interval,
		Addr:         addr,
		EventsBuffer: flagDaemonEventsBuffer,
		CORSOrigins:  cfg.Daemon.CORSOrigins,
		Static:       st,
	}, newClient(cfg), pub, log)

	log.Info().
		Str("addr", addr).
		Dur("interval", interval).
		Str("api", rf.API).
		Str("amqp", rf.AMQP).
		Str("run_file", flagDaemonRunFile).
		Msg("mchango daemon listening")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("daemon stopped")
	return nil
}

// findDaemon loads the run file, removing it when its process is gone.
func findDaemon() (daemon.RunFile, error) {
	rf, err := daemon.ReadRunFile(flagDaemonRunFile)
	if errors.Is(err, os.ErrNotExist) {
		return rf, errors.New("daemon is not running")
	}
	if err != nil {
		return rf, err
	}
	if !rf.Alive() {
		_ = os.Remove(flagDaemonRunFile)
		return rf, fmt.Errorf("daemon is not running (removed stale run file for pid %d)", rf.PID)
	}
	return rf, nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	rf, err := findDaemon()
	if err != nil {
		fmt.Printf("  Daemon: %v\n", err)
		return nil
	}

	fmt.Printf("  Daemon PID: %d (up %s)\n", rf.PID, time.Since(rf.StartedAt).Round(time.Second))
	fmt.Printf("  Address:    http://%s\n", rf.Addr)
	fmt.Printf("  Config:     %s\n", rf.ConfigPath)
	fmt.Printf("  Polling:    %s every %s\n", rf.API, rf.Interval)
	if rf.AMQP != "" {
		fmt.Printf("  AMQP:       %s\n", rf.AMQP)
	} else {
		fmt.Printf("  AMQP:       disabled\n")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	st, err := rf.FetchStatus(ctx, http.DefaultClient)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}
	if msg := rf.Reconcile(st); msg != "" {
		fmt.Println(cli.RenderNotice("  Mismatch: " + msg))
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll:  pending\n")
	} else {
		fmt.Printf("  Last poll:  %s (%d polls)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}
	fmt.Printf("  Grand total: %s across %d departments\n", cli.KES.Format(st.Summary.GrandTotal), st.Summary.Departments)
	fmt.Printf("  Transactions: %d (%d recent)\n", st.Summary.Transactions, st.Summary.Recent)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	rf, err := findDaemon()
	if err != nil {
		return err
	}

	statusCtx, cancelStatus := context.WithTimeout(cmd.Context(), 2*time.Second)
	st, statusErr := rf.FetchStatus(statusCtx, http.DefaultClient)
	cancelStatus()
	if statusErr == nil {
		if msg := rf.Reconcile(st); msg != "" {
			return fmt.Errorf("refusing to stop: %s", msg)
		}
	}

	proc, err := os.FindProcess(rf.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagDaemonStopTimeout)
	defer cancel()
	if err := rf.WaitExit(ctx); err != nil {
		return err
	}
	_ = os.Remove(flagDaemonRunFile)

	fmt.Printf("  Stopped daemon (pid %d)\n", rf.PID)
	if statusErr == nil && st.SubscriberCount > 0 {
		fmt.Printf("  Closed %d event streams\n", st.SubscriberCount)
	}
	if rf.AMQP != "" {
		fmt.Printf("  Closed AMQP publisher (%s)\n", rf.AMQP)
	}
	return nil
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
