package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	wifilog "github.com/shazow/wifictl/internal/log"
	"github.com/shazow/wifictl/internal/tui"
	"github.com/shazow/wifictl/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

// app holds the global flags shared by every subcommand.
type app struct {
	backend   string
	lib       string
	theme     string
	logLevel  string
	logFormat string
	logFile   string

	stdin          io.Reader
	stdout, stderr io.Writer
}

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rootFlagSet := flag.NewFlagSet("wifictl", flag.ContinueOnError)
	rootFlagSet.SetOutput(stderr)
	rootFlagSet.StringVar(&a.backend, "backend", defaultBackend, "backend to use: "+strings.Join(backendNames, ", ")+" (env: WIFICTL_BACKEND)")
	rootFlagSet.StringVar(&a.lib, "lib", "", "path to the native backend library (env: WIFICTL_LIB)")
	rootFlagSet.StringVar(&a.theme, "theme", "", "path to theme toml file (env: WIFICTL_THEME)")
	rootFlagSet.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootFlagSet.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	rootFlagSet.StringVar(&a.logFile, "log-file", "", "write TUI logs to this file")
	rootFlagSet.String("config", "", "config file with one flag per line")
	version := rootFlagSet.Bool("version", false, "display version")

	listFlagSet := flag.NewFlagSet("list", flag.ContinueOnError)
	listJSON := listFlagSet.Bool("json", false, "output in JSON format")
	listOpen := listFlagSet.Bool("open", false, "only show networks without security")
	listStrongest := listFlagSet.Bool("strongest", false, "show only the strongest access point per network")
	var listSecurity securityFlag
	listFlagSet.Var(&listSecurity, "security", "only show networks using this security: none, wep, wpa, wpa2, wpa3, unknown")
	listCmd := &ffcli.Command{
		Name:       "list",
		ShortUsage: "wifictl list [--json] [--open] [--strongest] [--security <type>]",
		ShortHelp:  "List wifi networks, strongest first",
		FlagSet:    listFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runList(a.stdout, listOptions{
					JSON:      *listJSON,
					Open:      *listOpen,
					Strongest: *listStrongest,
					Security:  listSecurity.value,
				}, wf)
			})
		},
	}

	statusCmd := &ffcli.Command{
		Name:      "status",
		ShortHelp: "Show the connection status",
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runStatus(a.stdout, wf)
			})
		},
	}

	connectFlagSet := flag.NewFlagSet("connect", flag.ContinueOnError)
	var connectPassword optionalString
	connectFlagSet.Var(&connectPassword, "password", "password for the network, omit for open networks")
	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wifictl connect [--password <password>] <ssid>",
		ShortHelp:  "Connect to a wifi network",
		FlagSet:    connectFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errMissingSSID
			}
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runConnect(a.stdout, args[0], connectPassword.value, wf)
			})
		},
	}

	disconnectCmd := &ffcli.Command{
		Name:      "disconnect",
		ShortHelp: "Disconnect from the current network",
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runDisconnect(a.stdout, wf)
			})
		},
	}

	hotspotStartFlagSet := flag.NewFlagSet("start", flag.ContinueOnError)
	hotspotQR := hotspotStartFlagSet.Bool("qr", false, "print a QR code for joining the hotspot")
	hotspotStartCmd := &ffcli.Command{
		Name:       "start",
		ShortUsage: "wifictl hotspot start [--qr] <ssid>",
		ShortHelp:  "Start a hotspot",
		FlagSet:    hotspotStartFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errMissingSSID
			}
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runHotspotStart(a.stdout, args[0], *hotspotQR, wf)
			})
		},
	}
	hotspotStopCmd := &ffcli.Command{
		Name:      "stop",
		ShortHelp: "Stop the hotspot",
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runHotspotStop(a.stdout, wf)
			})
		},
	}
	hotspotStatusCmd := &ffcli.Command{
		Name:      "status",
		ShortHelp: "Show whether a hotspot is supported and active",
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runHotspotStatus(a.stdout, wf)
			})
		},
	}
	hotspotCmd := &ffcli.Command{
		Name:        "hotspot",
		ShortUsage:  "wifictl hotspot <start|stop|status>",
		ShortHelp:   "Manage the access point",
		Subcommands: []*ffcli.Command{hotspotStartCmd, hotspotStopCmd, hotspotStatusCmd},
		Exec:        hotspotStatusCmd.Exec,
	}

	demoCmd := &ffcli.Command{
		Name:      "demo",
		ShortHelp: "Exercise every backend operation once",
		Exec: func(ctx context.Context, args []string) error {
			return a.withWiFi(func(wf *wifi.WiFi) error {
				return runDemo(a.stdout, a.stdin, wf)
			})
		},
	}

	root := &ffcli.Command{
		ShortUsage:  "wifictl [flags] <subcommand> [args...]",
		FlagSet:     rootFlagSet,
		Subcommands: []*ffcli.Command{listCmd, statusCmd, connectCmd, disconnectCmd, hotspotCmd, demoCmd},
		Options: []ff.Option{
			ff.WithEnvVarPrefix("WIFICTL"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
		},
		Exec: func(ctx context.Context, args []string) error {
			return a.runTUI()
		},
	}

	if err := root.Parse(args); err != nil {
		return err
	}

	if *version {
		fmt.Fprintln(stdout, Version)
		return nil
	}
	if !slices.Contains(backendNames, a.backend) {
		return fmt.Errorf("unknown backend %q", a.backend)
	}

	return root.Run(ctx)
}

// cliLogger writes to stderr so it never mixes with command output.
func (a *app) cliLogger() (*slog.Logger, error) {
	level, err := wifilog.ParseLevel(a.logLevel)
	if err != nil {
		return nil, err
	}
	h, err := wifilog.NewHandler(a.stderr, level, a.logFormat)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// withWiFi opens the selected backend for the duration of fn.
func (a *app) withWiFi(fn func(*wifi.WiFi) error) error {
	logger, err := a.cliLogger()
	if err != nil {
		return err
	}
	return a.openWiFi(logger, fn)
}

func (a *app) openWiFi(logger *slog.Logger, fn func(*wifi.WiFi) error) error {
	lib, closeLib, err := openLibrary(a.backend, a.lib, logger)
	if err != nil {
		return err
	}
	defer closeLib()

	wf, err := wifi.New(lib, logger)
	defer wf.Close()
	if err != nil {
		return fmt.Errorf("%s backend: %w", a.backend, err)
	}
	return fn(wf)
}

// runTUI owns the terminal, so logs go to the log view and optionally to a
// file instead of stderr.
func (a *app) runTUI() error {
	level, err := wifilog.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}

	var w io.Writer = io.Discard
	if a.logFile != "" {
		f, err := wifilog.OpenFile(a.logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	inner, err := wifilog.NewHandler(w, level, a.logFormat)
	if err != nil {
		return err
	}
	handler := wifilog.NewTUIHandler(inner, nil)
	logger := slog.New(handler)

	if a.theme != "" {
		f, err := os.Open(a.theme)
		if err != nil {
			return fmt.Errorf("error loading theme: %w", err)
		}
		err = tui.LoadTheme(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("error loading theme: %w", err)
		}
	}

	return a.openWiFi(logger, func(wf *wifi.WiFi) error {
		return tui.Run(tui.NewSession(wf), handler)
	})
}
