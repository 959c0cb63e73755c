package nordvpn

import (
	"math"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/dustin/go-humanize"
)

// The Parse functions map one command's stdout onto its typed result.
// They fail with the RegexError of the target when none of its fields are
// present, and with the RegexError of the first mandatory field that is
// missing or cannot be converted otherwise.

// expiresLayout is the layout of the rebuilt expiry date, e.g. "Sep 7 2025".
const expiresLayout = "Jan 2 2006"

// Uptime component weights in seconds.
const (
	secondsPerYear   = 3.154e7
	secondsPerMonth  = 2.628e6
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// ParseAccount parses "nordvpn account" output.
func ParseAccount(text string) (*Account, error) {
	c := capture(accountPattern(), text)
	if !c.hasAny("email", "active", "expires_month", "expires_day", "expires_year") {
		return nil, RegexAccount
	}

	email, ok := c.get("email")
	if !ok || email == "" {
		return nil, RegexAccountEmail
	}

	active, ok := c.get("active")
	if !ok {
		return nil, RegexAccountActive
	}

	month, okMonth := c.get("expires_month")
	day, okDay := c.get("expires_day")
	year, okYear := c.get("expires_year")
	if !okMonth || !okDay || !okYear {
		return nil, RegexAccountExpires
	}
	expires, err := time.Parse(expiresLayout, month+" "+day+" "+year)
	if err != nil {
		return nil, RegexAccountExpires
	}

	return &Account{
		Email:   email,
		Active:  strings.EqualFold(active, "active"),
		Expires: expires,
	}, nil
}

// ParseConnected parses the final line of "nordvpn connect" output.
func ParseConnected(text string) (Connected, error) {
	c := capture(connectPattern(), text)
	if c == nil {
		return Connected{}, RegexConnect
	}

	country, _ := c.get("country")
	hostname, _ := c.get("hostname")
	serverText, _ := c.get("server")
	server, err := strconv.ParseUint(serverText, 10, 32)
	if err != nil || server == 0 {
		return Connected{}, RegexConnect
	}

	return Connected{
		Country:  country,
		Server:   uint32(server),
		Hostname: hostname,
	}, nil
}

// ParseLoginURL parses the browser URL printed by "nordvpn login".
func ParseLoginURL(text string) (*url.URL, error) {
	c := capture(loginPattern(), text)
	raw, ok := c.get("url")
	if !ok {
		return nil, RegexLogin
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, RegexLogin
	}
	return u, nil
}

// ParseStatus parses "nordvpn status" output for a connected session.
func ParseStatus(text string) (*Status, error) {
	c := capture(statusPattern(), text)
	if !c.hasAny("hostname", "country", "city", "ip", "technology", "protocol",
		"transfer_received", "transfer_sent", "uptime") {
		return nil, RegexStatus
	}

	var status Status
	var ok bool

	if status.Hostname, ok = c.get("hostname"); !ok {
		return nil, RegexStatusHostname
	}
	if status.Country, ok = c.get("country"); !ok {
		return nil, RegexStatusCountry
	}
	if status.City, ok = c.get("city"); !ok {
		return nil, RegexStatusCity
	}

	ip, ok := c.get("ip")
	if !ok {
		return nil, RegexStatusIP
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, RegexStatusIP
	}
	status.IP = addr

	technology, ok := c.get("technology")
	if !ok {
		return nil, RegexStatusTechnology
	}
	if status.Technology, err = ParseTechnology(technology); err != nil {
		return nil, RegexStatusTechnology
	}

	protocol, ok := c.get("protocol")
	if !ok {
		return nil, RegexStatusProtocol
	}
	if status.Protocol, err = ParseProtocol(protocol); err != nil {
		return nil, RegexStatusProtocol
	}

	received, okReceived := c.get("transfer_received")
	sent, okSent := c.get("transfer_sent")
	if !okReceived || !okSent {
		return nil, RegexStatusTransfer
	}
	if status.Transfer.Received, err = humanize.ParseBytes(received); err != nil {
		return nil, RegexStatusTransfer
	}
	if status.Transfer.Sent, err = humanize.ParseBytes(sent); err != nil {
		return nil, RegexStatusTransfer
	}

	if _, ok := c.get("uptime"); !ok {
		return nil, RegexStatusUptime
	}
	if status.Uptime, err = sumUptime(c); err != nil {
		return nil, RegexStatusUptime
	}

	return &status, nil
}

// ParseUptime converts text such as "1 day 4 hours 5 minutes" into a
// duration rounded to the millisecond. Empty text is zero.
func ParseUptime(text string) (time.Duration, error) {
	c := capture(uptimePattern(), text)
	if c == nil {
		return 0, RegexStatusUptime
	}
	d, err := sumUptime(c)
	if err != nil {
		return 0, RegexStatusUptime
	}
	return d, nil
}

func sumUptime(c captures) (time.Duration, error) {
	components := []struct {
		name   string
		weight float64
	}{
		{"uptime_years", secondsPerYear},
		{"uptime_months", secondsPerMonth},
		{"uptime_days", secondsPerDay},
		{"uptime_hours", secondsPerHour},
		{"uptime_minutes", secondsPerMinute},
		{"uptime_seconds", 1},
	}

	var seconds float64
	for _, component := range components {
		text, ok := c.get(component.name)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, err
		}
		seconds += n * component.weight
	}
	if seconds*float64(time.Second) > math.MaxInt64 {
		return 0, RegexStatusUptime
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond, nil
}

// ParseSettings parses "nordvpn settings" output.
func ParseSettings(text string) (Settings, error) {
	c := capture(settingsPattern(), text)
	if !c.hasAny("technology", "protocol", "firewall", "killswitch", "cybersec",
		"obfuscate", "notify", "autoconnect", "ipv6", "dns_disabled", "dns_primary") {
		return Settings{}, RegexSettings
	}

	var s Settings
	var err error

	technology, ok := c.get("technology")
	if !ok {
		return Settings{}, RegexSettingsTechnology
	}
	if s.Technology, err = ParseTechnology(technology); err != nil {
		return Settings{}, RegexSettingsTechnology
	}

	// NordLynx only runs over UDP and the tool omits the protocol line for it.
	protocol, ok := c.get("protocol")
	switch {
	case ok:
		if s.Protocol, err = ParseProtocol(protocol); err != nil {
			return Settings{}, RegexSettingsProtocol
		}
	case s.Technology == NordLynx:
		s.Protocol = UDP
	default:
		return Settings{}, RegexSettingsProtocol
	}

	toggles := []struct {
		name  string
		field RegexError
		dst   *bool
	}{
		{"firewall", RegexSettingsFirewall, &s.Firewall},
		{"killswitch", RegexSettingsKillSwitch, &s.KillSwitch},
		{"cybersec", RegexSettingsCyberSec, &s.CyberSec},
		{"notify", RegexSettingsNotify, &s.Notify},
		{"autoconnect", RegexSettingsAutoConnect, &s.AutoConnect},
		{"ipv6", RegexSettingsIPv6, &s.IPv6},
	}
	for _, toggle := range toggles {
		value, ok := c.get(toggle.name)
		if !ok {
			return Settings{}, toggle.field
		}
		*toggle.dst = enabled(value)
	}

	if value, ok := c.get("obfuscate"); ok {
		obfuscate := enabled(value)
		s.Obfuscate = &obfuscate
	}

	if s.DNS, err = parseDNS(c); err != nil {
		return Settings{}, RegexSettingsDNS
	}

	return s, nil
}

func parseDNS(c captures) ([]netip.Addr, error) {
	if value, ok := c.get("dns_disabled"); ok {
		if enabled(value) {
			return nil, RegexSettingsDNS
		}
		return nil, nil
	}

	var addrs []netip.Addr
	for _, name := range []string{"dns_primary", "dns_secondary", "dns_tertiary"} {
		value, ok := c.get(name)
		if !ok {
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		return nil, RegexSettingsDNS
	}
	return addrs, nil
}

// ParseVersion parses "nordvpn version" output.
func ParseVersion(text string) (*semver.Version, error) {
	c := capture(versionPattern(), text)
	raw, ok := c.get("version")
	if !ok {
		return nil, RegexVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, RegexVersion
	}
	return v, nil
}

func enabled(value string) bool {
	return strings.EqualFold(value, "enabled")
}
