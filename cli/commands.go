package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/metrics"
	"github.com/yllada/nordvpn-manager/nordvpn"
	"github.com/yllada/nordvpn-manager/notify"
)

func (c *CLI) account(ctx context.Context, args []string) error {
	account, err := c.client.Account(ctx)
	if err != nil {
		return err
	}
	if account == nil {
		fmt.Fprintln(c.out, "You are not logged in. Run 'nordvpn-manager login' first.")
		return common.ErrNotLoggedIn
	}

	service := "Inactive"
	if account.Active {
		service = "Active"
	}

	fmt.Fprintln(c.out, c.palette.title("Account"))
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Email:\t%s\n", account.Email)
	fmt.Fprintf(w, "VPN Service:\t%s\n", service)
	fmt.Fprintf(w, "Expires:\t%s (%s)\n", account.Expires.Format("Jan 2, 2006"), humanize.Time(account.Expires))
	return w.Flush()
}

func (c *CLI) countries(ctx context.Context, args []string) error {
	countries, err := c.client.Countries(ctx)
	if err != nil {
		return err
	}
	printColumns(c.out, countries, terminalWidth())
	return nil
}

func (c *CLI) cities(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cities COUNTRY", common.ErrUsage)
	}
	cities, err := c.client.Cities(ctx, args[0])
	if err != nil {
		return err
	}
	printColumns(c.out, cities, terminalWidth())
	return nil
}

func (c *CLI) groups(ctx context.Context, args []string) error {
	groups, err := c.client.Groups(ctx)
	if err != nil {
		return err
	}
	printColumns(c.out, groups, terminalWidth())
	return nil
}

func (c *CLI) connect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(c.out)
	country := fs.String("country", "", "country name, e.g. Germany")
	city := fs.String("city", "", "city name, e.g. Berlin")
	code := fs.String("code", "", "country code, e.g. de")
	group := fs.String("group", "", "server group, e.g. P2P")
	server := fs.String("server", "", "server name, e.g. de507")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", common.ErrUsage, fs.Arg(0))
	}

	opt, err := connectOption(*country, *city, *code, *group, *server)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, c.palette.muted("Connecting..."))
	connected, err := c.client.Connect(ctx, opt)
	if err != nil {
		notify.NotifyError(c.notifier, "Connect", err)
		return err
	}

	fmt.Fprintln(c.out, c.palette.success(fmt.Sprintf("Connected to %s #%d (%s)",
		connected.Country, connected.Server, connected.Hostname)))
	notify.NotifyConnected(c.notifier, connected)
	return nil
}

// connectOption builds the target from the connect flags. At most one flag
// may be set, except that a city may be qualified by its country.
func connectOption(country, city, code, group, server string) (nordvpn.ConnectOption, error) {
	if country != "" && city != "" && code == "" && group == "" && server == "" {
		return nordvpn.ByCountryCity(country, city), nil
	}

	var opts []nordvpn.ConnectOption
	if country != "" {
		opts = append(opts, nordvpn.ByCountry(country))
	}
	if city != "" {
		opts = append(opts, nordvpn.ByCity(city))
	}
	if code != "" {
		opts = append(opts, nordvpn.ByCountryCode(code))
	}
	if group != "" {
		opts = append(opts, nordvpn.ByGroup(group))
	}
	if server != "" {
		opts = append(opts, nordvpn.ByServer(server))
	}

	switch len(opts) {
	case 0:
		return nordvpn.ConnectOption{}, nil
	case 1:
		return opts[0], nil
	}
	return nordvpn.ConnectOption{}, fmt.Errorf("%w: choose one connect target", common.ErrUsage)
}

func (c *CLI) disconnect(ctx context.Context, args []string) error {
	disconnected, err := c.client.Disconnect(ctx)
	if err != nil {
		notify.NotifyError(c.notifier, "Disconnect", err)
		return err
	}
	if !disconnected {
		fmt.Fprintln(c.out, "You are not connected.")
		return nil
	}

	fmt.Fprintln(c.out, c.palette.success("Disconnected"))
	notify.NotifyDisconnected(c.notifier)
	return nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	u, err := c.client.Login(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(c.out, "You are already logged in.")
		return nil
	}
	fmt.Fprintf(c.out, "Continue in the browser: %s\n", u)
	return nil
}

func (c *CLI) logout(ctx context.Context, args []string) error {
	loggedOut, err := c.client.Logout(ctx)
	if err != nil {
		return err
	}
	if !loggedOut {
		fmt.Fprintln(c.out, "You are not logged in.")
		return nil
	}
	fmt.Fprintln(c.out, c.palette.success("Logged out"))
	return nil
}

func (c *CLI) status(ctx context.Context, args []string) error {
	status, err := c.client.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, c.palette.title("Status"))
	if status == nil {
		fmt.Fprintln(c.out, "Disconnected")
		return nil
	}
	return writeStatus(c.out, status)
}

func writeStatus(out io.Writer, status *nordvpn.Status) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Server:\t%s\n", status.Hostname)
	fmt.Fprintf(w, "Location:\t%s, %s\n", status.City, status.Country)
	fmt.Fprintf(w, "IP Address:\t%s\n", status.IP)
	fmt.Fprintf(w, "Technology:\t%s\n", status.Technology)
	fmt.Fprintf(w, "Protocol:\t%s\n", status.Protocol)
	fmt.Fprintf(w, "Received:\t%s\n", humanize.IBytes(status.Transfer.Received))
	fmt.Fprintf(w, "Sent:\t%s\n", humanize.IBytes(status.Transfer.Sent))
	fmt.Fprintf(w, "Uptime:\t%s\n", formatDuration(status.Uptime))
	return w.Flush()
}

func (c *CLI) settings(ctx context.Context, args []string) error {
	s, err := c.client.Settings(ctx)
	if err != nil {
		return err
	}

	obfuscate := "n/a"
	if s.Obfuscate != nil {
		obfuscate = onOff(*s.Obfuscate)
	}
	dns := "disabled"
	if len(s.DNS) > 0 {
		addrs := make([]string, len(s.DNS))
		for i, addr := range s.DNS {
			addrs[i] = addr.String()
		}
		dns = strings.Join(addrs, ", ")
	}

	fmt.Fprintln(c.out, c.palette.title("Settings"))
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Technology:\t%s\n", s.Technology)
	fmt.Fprintf(w, "Protocol:\t%s\n", s.Protocol)
	fmt.Fprintf(w, "Firewall:\t%s\n", onOff(s.Firewall))
	fmt.Fprintf(w, "Kill Switch:\t%s\n", onOff(s.KillSwitch))
	fmt.Fprintf(w, "CyberSec:\t%s\n", onOff(s.CyberSec))
	fmt.Fprintf(w, "Obfuscate:\t%s\n", obfuscate)
	fmt.Fprintf(w, "Notify:\t%s\n", onOff(s.Notify))
	fmt.Fprintf(w, "Auto-connect:\t%s\n", onOff(s.AutoConnect))
	fmt.Fprintf(w, "IPv6:\t%s\n", onOff(s.IPv6))
	fmt.Fprintf(w, "DNS:\t%s\n", dns)
	return w.Flush()
}

func (c *CLI) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: set NAME VALUE...", common.ErrUsage)
	}

	name, values := args[0], args[1:]
	if err := c.client.Set(ctx, name, values...); err != nil {
		var cliErr *nordvpn.CliError
		if errors.As(err, &cliErr) && cliErr.Kind == nordvpn.KindInvalidSettingName {
			return fmt.Errorf("unknown setting %q: %w", name, err)
		}
		return err
	}

	fmt.Fprintln(c.out, c.palette.success(fmt.Sprintf("%s set to %s", name, strings.Join(values, " "))))
	return nil
}

func (c *CLI) version(ctx context.Context, args []string) error {
	v, err := c.client.Version(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "nordvpn %s\n", v)
	if !nordvpn.Supported(v) {
		fmt.Fprintln(c.out, c.palette.failure("versions older than "+nordvpn.MinimumVersion+" are not supported"))
		return fmt.Errorf("%w: %s", common.ErrUnsupportedTool, v)
	}
	return nil
}

func (c *CLI) metrics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ContinueOnError)
	fs.SetOutput(c.out)
	address := fs.String("address", c.cfg.MetricsAddress, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return metrics.Serve(ctx, *address, c.client, c.cfg.CommandTimeout)
}

// printColumns lays items out in as many columns as fit in width.
func printColumns(out io.Writer, items []string, width int) {
	longest := 0
	for _, item := range items {
		if len(item) > longest {
			longest = len(item)
		}
	}

	columns := width / (longest + 2)
	if columns < 1 {
		columns = 1
	}

	var b strings.Builder
	for i, item := range items {
		last := (i+1)%columns == 0 || i == len(items)-1
		if last {
			b.WriteString(item)
			b.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&b, "%-*s", longest+2, item)
	}
	io.WriteString(out, b.String())
}
