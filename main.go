// Package main provides the entry point for NordVPN Manager, a command-line
// front end for the official nordvpn client on Linux.
//
// Features:
//   - Typed access to account, status, settings and server lists
//   - Connect and disconnect with desktop notifications
//   - Interactive shell with completion and history
//   - Live status view and a Prometheus metrics endpoint
//
// Usage:
//
//	nordvpn-manager [options] command [args]
//
// Environment:
//
//	The nordvpn client must be installed and its daemon running.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/yllada/nordvpn-manager/cli"
	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/config"
	"github.com/yllada/nordvpn-manager/nordvpn"
	"github.com/yllada/nordvpn-manager/notify"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	configPath  = flag.String("config", "", "Use an alternative configuration file")
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable debug logging")
	showHelp    = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	if *showHelp {
		cli.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logLevel := cfg.Level()
	if *verbose {
		logLevel = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: cfg.LogToFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if _, err := exec.LookPath(cfg.Binary); err != nil {
		common.LogError("%s not found: %v", cfg.Binary, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", common.ErrToolNotInstalled)
		return 1
	}

	client := nordvpn.NewClient(
		nordvpn.WithProgram(cfg.Binary),
		nordvpn.WithTimeout(cfg.CommandTimeout),
	)

	notifier := notify.New(cfg.ShowNotifications)
	if closer, ok := notifier.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if err := cli.New(client, cfg, notifier).Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load()
}

// setupSignalHandler cancels the context on SIGINT/SIGTERM so running
// commands, the metrics server and the watch view can shut down.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, shutting down", sig)
		cancel()
	}()
}
