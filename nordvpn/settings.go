package nordvpn

import (
	"context"
	"net/netip"
	"strconv"
	"strings"
)

// Set changes one tool setting, e.g. Set(ctx, "firewall", "true").
func (c *Client) Set(ctx context.Context, name string, values ...string) error {
	args := append([]string{"set", name}, values...)
	inv, res, stdout, err := c.command(ctx, args...)
	if err != nil {
		return err
	}

	switch {
	case strings.Contains(stdout, sentinelInvalidValue):
		return c.fail(&CliError{
			Kind:       KindInvalidSettingValue,
			Invocation: inv,
			Setting:    name,
			Values:     append([]string(nil), values...),
		})
	case invalidSettingPattern().MatchString(stdout):
		return c.fail(&CliError{Kind: KindInvalidSettingName, Invocation: inv, Setting: name})
	case !res.Success():
		return c.fail(badOutput(inv))
	}

	c.logger.Info("nordvpn: %s set to %s", name, strings.Join(values, " "))
	return nil
}

// Applier keeps a local mirror of the tool's settings. Every setter issues
// one "set" invocation and updates the mirror only after the tool accepted
// the value. An Applier is not safe for concurrent use.
type Applier struct {
	client   *Client
	settings Settings
}

// NewApplier creates an Applier whose mirror starts from current, usually
// the result of Client.Settings.
func NewApplier(client *Client, current Settings) *Applier {
	current.DNS = append([]netip.Addr(nil), current.DNS...)
	if len(current.DNS) == 0 {
		current.DNS = nil
	}
	return &Applier{client: client, settings: current}
}

// Settings returns a copy of the mirror.
func (a *Applier) Settings() Settings {
	s := a.settings
	if s.Obfuscate != nil {
		obfuscate := *s.Obfuscate
		s.Obfuscate = &obfuscate
	}
	if s.DNS != nil {
		s.DNS = append([]netip.Addr(nil), s.DNS...)
	}
	return s
}

// SetTechnology switches between OpenVPN and NordLynx.
func (a *Applier) SetTechnology(ctx context.Context, t Technology) error {
	if err := a.client.Set(ctx, "technology", t.String()); err != nil {
		return err
	}
	a.settings.Technology = t
	return nil
}

// SetProtocol sets the OpenVPN transport protocol.
func (a *Applier) SetProtocol(ctx context.Context, p Protocol) error {
	if err := a.client.Set(ctx, "protocol", p.String()); err != nil {
		return err
	}
	a.settings.Protocol = p
	return nil
}

// SetFirewall enables or disables the firewall.
func (a *Applier) SetFirewall(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "firewall", enabled, &a.settings.Firewall)
}

// SetKillSwitch enables or disables the kill switch.
func (a *Applier) SetKillSwitch(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "killswitch", enabled, &a.settings.KillSwitch)
}

// SetCyberSec enables or disables CyberSec.
func (a *Applier) SetCyberSec(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "cybersec", enabled, &a.settings.CyberSec)
}

// SetObfuscate sets obfuscation. nil disables it on the tool and records
// that the tool does not report the setting.
func (a *Applier) SetObfuscate(ctx context.Context, enabled *bool) error {
	value := false
	if enabled != nil {
		value = *enabled
	}
	if err := a.client.Set(ctx, "obfuscate", strconv.FormatBool(value)); err != nil {
		return err
	}
	if enabled == nil {
		a.settings.Obfuscate = nil
	} else {
		a.settings.Obfuscate = &value
	}
	return nil
}

// SetNotify enables or disables the tool's own notifications.
func (a *Applier) SetNotify(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "notify", enabled, &a.settings.Notify)
}

// SetAutoConnect enables or disables connecting on startup.
func (a *Applier) SetAutoConnect(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "autoconnect", enabled, &a.settings.AutoConnect)
}

// SetIPv6 enables or disables IPv6.
func (a *Applier) SetIPv6(ctx context.Context, enabled bool) error {
	return a.setBool(ctx, "ipv6", enabled, &a.settings.IPv6)
}

// SetDNS sets custom DNS servers. An empty list disables custom DNS.
func (a *Applier) SetDNS(ctx context.Context, addrs []netip.Addr) error {
	values := []string{"false"}
	if len(addrs) > 0 {
		values = make([]string, 0, len(addrs))
		for _, addr := range addrs {
			values = append(values, addr.String())
		}
	}
	if err := a.client.Set(ctx, "dns", values...); err != nil {
		return err
	}
	if len(addrs) == 0 {
		a.settings.DNS = nil
	} else {
		a.settings.DNS = append([]netip.Addr(nil), addrs...)
	}
	return nil
}

func (a *Applier) setBool(ctx context.Context, name string, enabled bool, dst *bool) error {
	if err := a.client.Set(ctx, name, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	*dst = enabled
	return nil
}

// Update pushes every field of the mirror to the tool in declaration order.
// It stops at the first rejected field and does not roll back the fields
// already applied; the returned *UpdateError lists them.
func (a *Applier) Update(ctx context.Context) error {
	s := a.Settings()
	steps := []struct {
		name  string
		apply func() error
	}{
		{"technology", func() error { return a.SetTechnology(ctx, s.Technology) }},
		{"protocol", func() error { return a.SetProtocol(ctx, s.Protocol) }},
		{"firewall", func() error { return a.SetFirewall(ctx, s.Firewall) }},
		{"killswitch", func() error { return a.SetKillSwitch(ctx, s.KillSwitch) }},
		{"cybersec", func() error { return a.SetCyberSec(ctx, s.CyberSec) }},
		{"obfuscate", func() error { return a.SetObfuscate(ctx, s.Obfuscate) }},
		{"notify", func() error { return a.SetNotify(ctx, s.Notify) }},
		{"autoconnect", func() error { return a.SetAutoConnect(ctx, s.AutoConnect) }},
		{"ipv6", func() error { return a.SetIPv6(ctx, s.IPv6) }},
		{"dns", func() error { return a.SetDNS(ctx, s.DNS) }},
	}

	var applied []string
	for _, step := range steps {
		if err := step.apply(); err != nil {
			return &UpdateError{Applied: applied, Failed: step.name, Err: err}
		}
		applied = append(applied, step.name)
	}
	return nil
}
