// Package cli implements the nordvpn-manager subcommands, the interactive
// shell and the live status view on top of package nordvpn.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/config"
	"github.com/yllada/nordvpn-manager/nordvpn"
	"github.com/yllada/nordvpn-manager/notify"
)

// CLI represents the command-line interface.
type CLI struct {
	client   *nordvpn.Client
	cfg      *config.Config
	notifier notify.Sender
	out      io.Writer
	palette  palette
}

// New creates a CLI writing to stdout.
func New(client *nordvpn.Client, cfg *config.Config, notifier notify.Sender) *CLI {
	c := &CLI{
		client:   client,
		cfg:      cfg,
		notifier: notifier,
	}
	c.SetOutput(os.Stdout)
	return c
}

// SetOutput redirects command output. Styling is only applied when w is a terminal.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
	c.palette = newPalette(w)
}

type command struct {
	name    string
	args    string
	summary string
	run     func(c *CLI, ctx context.Context, args []string) error
}

func commands() []command {
	return []command{
		{"account", "", "Show the logged-in account", (*CLI).account},
		{"cities", "COUNTRY", "List cities with servers in a country", (*CLI).cities},
		{"connect", "[-country C] [-city C] [-code CC] [-group G] [-server S]", "Connect to a server", (*CLI).connect},
		{"countries", "", "List countries with servers", (*CLI).countries},
		{"disconnect", "", "Disconnect from the current server", (*CLI).disconnect},
		{"groups", "", "List server groups", (*CLI).groups},
		{"help", "", "Show this help message", (*CLI).help},
		{"login", "", "Log in through the browser", (*CLI).login},
		{"logout", "", "Log out", (*CLI).logout},
		{"metrics", "[-address HOST:PORT]", "Serve Prometheus metrics for the session", (*CLI).metrics},
		{"set", "NAME VALUE...", "Change a setting, e.g. set killswitch true", (*CLI).set},
		{"settings", "", "Show the current settings", (*CLI).settings},
		{"shell", "", "Start an interactive shell", (*CLI).shell},
		{"status", "", "Show the connection status", (*CLI).status},
		{"version", "", "Show the nordvpn version", (*CLI).version},
		{"watch", "", "Show a live connection status view", (*CLI).watch},
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands() {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// Run executes one subcommand, e.g. Run(ctx, []string{"cities", "Germany"}).
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.PrintHelp()
		return nil
	}

	cmd, ok := lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrUnknownCommand, args[0])
	}
	common.LogDebug("Running command %s", strings.Join(args, " "))
	return cmd.run(c, ctx, args[1:])
}

func (c *CLI) help(ctx context.Context, args []string) error {
	c.PrintHelp()
	return nil
}

// PrintHelp prints CLI usage help.
func (c *CLI) PrintHelp() {
	PrintHelp(c.out)
}

// PrintHelp writes usage help to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "%s - command line interface for the nordvpn client\n\n", common.AppName)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  nordvpn-manager [OPTIONS] COMMAND [ARGS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config PATH   Use an alternative configuration file")
	fmt.Fprintln(w, "  -verbose       Enable debug logging")
	fmt.Fprintln(w, "  -version       Show version and exit")
	fmt.Fprintln(w, "  -help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	cmds := commands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	for _, cmd := range cmds {
		usage := strings.TrimSpace(cmd.name + " " + cmd.args)
		fmt.Fprintf(w, "  %-24s %s\n", usage, cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  nordvpn-manager connect -country Germany -city Berlin")
	fmt.Fprintln(w, "  nordvpn-manager set dns 1.1.1.1 8.8.8.8")
	fmt.Fprintln(w, "  nordvpn-manager watch")
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
