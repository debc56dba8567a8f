package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/cli"
	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
	"github.com/theirongolddev/pocket/internal/server"
)

var (
	flagServeAddr         string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over a local HTTP API",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", "", "PID file path (default in the data dir)")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", "", "Log file path for detached mode (default in the data dir)")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// servePaths resolves the listen address and process files against config.
type servePaths struct {
	addr    string
	pidFile pidFile
	logFile string
}

func resolveServePaths(cfg config.Config) servePaths {
	p := servePaths{
		addr:    flagServeAddr,
		pidFile: pidFile(flagServePIDFile),
		logFile: flagServeLogFile,
	}
	if p.addr == "" {
		p.addr = cfg.Serve.Addr
	}
	dir := config.DataDir(cfg)
	if p.pidFile == "" {
		p.pidFile = pidFile(filepath.Join(dir, "pocket-serve.pid"))
	}
	if p.logFile == "" {
		p.logFile = filepath.Join(dir, "pocket-serve.log")
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid serve launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := resolveServePaths(cfg)

	if flagServeDetach {
		return startServeDetached(paths)
	}

	return runServeForeground(cmd.Context(), cfg, paths)
}

func startServeDetached(paths servePaths) error {
	if err := paths.pidFile.claim(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(paths.pidFile.dir(), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(paths.logFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(paths.logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Stdin = nil
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", string(paths.pidFile))
	fmt.Printf("  API: http://%s/v1/ledger\n", paths.addr)
	fmt.Printf("  Log: %s\n", paths.logFile)
	return nil
}

func runServeForeground(ctx context.Context, cfg config.Config, paths servePaths) error {
	if err := paths.pidFile.claim(); err != nil {
		return err
	}

	if err := os.MkdirAll(paths.pidFile.dir(), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	pid := os.Getpid()
	if err := paths.pidFile.write(pid); err != nil {
		return err
	}
	defer paths.pidFile.remove()

	state := serveRuntimeState{
		PID:       pid,
		Addr:      paths.addr,
		StartedAt: time.Now(),
		DataDir:   config.DataDir(cfg),
		Backend:   cfg.General.Backend,
	}
	_ = paths.pidFile.writeState(state)

	eventsBuffer := cfg.Serve.EventsBuffer
	if flagServeEventsBuffer > 0 {
		eventsBuffer = flagServeEventsBuffer
	}

	svc := server.New(server.Config{
		Addr:         paths.addr,
		DataDir:      state.DataDir,
		Backend:      cfg.General.Backend,
		EventsBuffer: eventsBuffer,
		RateLimit:    cfg.Serve.RateLimit,
	}, rt.ledger, initialLock(cfg), server.WithLogger(serverLogger()))

	if !flagServeChild {
		fmt.Printf("  pocket listening on http://%s\n", paths.addr)
		fmt.Printf("  Ledger: %s (%s)\n", state.DataDir, cfg.General.Backend)
		fmt.Printf("  Stop with: pocket serve stop --pid-file %s\n", string(paths.pidFile))
	}

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serverLogger logs requests at info. The detached child writes JSON lines
// into its log file.
func serverLogger() *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = slog.LevelInfo
	lc.Output = os.Stdout
	lc.JSON = flagServeChild
	if flagVerbose {
		lc.Level = slog.LevelDebug
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := resolveServePaths(cfg)

	pid, err := paths.pidFile.read()
	if err != nil {
		fmt.Printf("  Server: not running (pid file not found)\n")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := paths.addr
	if st, err := paths.pidFile.readState(); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	m := moneyFor(cfg)
	fmt.Printf("  Instance: %s\n", st.InstanceID)
	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Uptime: %s\n", formatUptime(st.StartedAt, time.Now()))
	fmt.Printf("  Backend: %s\n", st.Backend)
	fmt.Printf("  Income: %s\n", m.Format(ledger.Number(st.Summary.Income)))
	fmt.Printf("  Fixed expenses: %s\n", m.Format(ledger.Number(st.Summary.FixedExpenses)))
	fmt.Printf("  Variable: %s (%d entries)\n", m.Format(st.Summary.VariableTotal), st.Summary.Entries)
	fmt.Printf("  Available: %s\n", m.Format(st.Summary.AvailableBalance))
	if st.Summary.Editable {
		fmt.Printf("  Fixed values: editable\n")
	} else {
		fmt.Printf("  Fixed values: locked\n")
	}
	fmt.Printf("  Events: %d buffered, %d subscribers\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := resolveServePaths(cfg)

	pid, err := paths.pidFile.read()
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			paths.pidFile.remove()
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func formatUptime(started, now time.Time) string {
	return cli.FormatDuration(int64(now.Sub(started).Seconds()))
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
