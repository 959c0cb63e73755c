package nordvpn

import (
	"errors"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"
)

const statusOutput = "\r-\r  \r" + `Status: Connected
Current server: de507.nordvpn.com
Country: Germany
City: Berlin
Server IP: 185.130.184.139
Current technology: NORDLYNX
Current protocol: UDP
Transfer: 2.00 MiB received, 500.00 KiB sent
Uptime: 2 years 3 months 1 day 4 hours 5 minutes 6 seconds
`

const settingsOutput = `Technology: OPENVPN
Protocol: TCP
Firewall: enabled
Kill Switch: disabled
CyberSec: enabled
Obfuscate: disabled
Notify: enabled
Auto-connect: disabled
IPv6: disabled
DNS: 1.1.1.1, 8.8.8.8
`

const accountOutput = `Account Information:
Email Address: user@example.com
VPN Service: Active (Expires on Sep 7th, 2025)
`

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(statusOutput)
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}

	want := &Status{
		Hostname:   "de507.nordvpn.com",
		Country:    "Germany",
		City:       "Berlin",
		IP:         netip.MustParseAddr("185.130.184.139"),
		Technology: NordLynx,
		Protocol:   UDP,
		Transfer:   Transfer{Received: 2097152, Sent: 512000},
		Uptime:     71065106 * time.Second,
	}
	if !reflect.DeepEqual(status, want) {
		t.Errorf("ParseStatus() = %+v, want %+v", status, want)
	}
}

func TestParseStatus_FieldOrder(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(statusOutput), "\n")
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	status, err := ParseStatus(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if status.Hostname != "de507.nordvpn.com" || status.City != "Berlin" {
		t.Errorf("ParseStatus() = %+v, want fields from reversed output", status)
	}
}

func TestParseStatus_MissingField(t *testing.T) {
	tests := []struct {
		line string
		want RegexError
	}{
		{"Current server:", RegexStatusHostname},
		{"Country:", RegexStatusCountry},
		{"City:", RegexStatusCity},
		{"Server IP:", RegexStatusIP},
		{"Current technology:", RegexStatusTechnology},
		{"Current protocol:", RegexStatusProtocol},
		{"Transfer:", RegexStatusTransfer},
		{"Uptime:", RegexStatusUptime},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			_, err := ParseStatus(withoutLine(statusOutput, tt.line))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseStatus() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseStatus_Malformed(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want RegexError
	}{
		{"ip out of range", "185.130.184.139", "999.130.184.139", RegexStatusIP},
		{"unknown unit", "2.00 MiB", "2.00 Zorks", RegexStatusTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatus(strings.Replace(statusOutput, tt.old, tt.new, 1))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseStatus() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseStatus_NoFields(t *testing.T) {
	_, err := ParseStatus("Something unexpected happened.\n")
	if !errors.Is(err, RegexStatus) {
		t.Errorf("ParseStatus() error = %v, want %v", err, RegexStatus)
	}
}

func TestParseStatus_IPv6(t *testing.T) {
	text := strings.Replace(statusOutput, "185.130.184.139", "2a02:6ea0:c020::1", 1)
	status, err := ParseStatus(text)
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if want := netip.MustParseAddr("2a02:6ea0:c020::1"); status.IP != want {
		t.Errorf("IP = %v, want %v", status.IP, want)
	}
}

func TestParseUptime(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"", 0},
		{"6 seconds", 6 * time.Second},
		{"1 minute", time.Minute},
		{"1 day 4 hours", 28 * time.Hour},
		{"1 month", 2628000 * time.Second},
		{"2 years 3 months 1 day 4 hours 5 minutes 6 seconds", 71065106 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseUptime(tt.text)
			if err != nil {
				t.Fatalf("ParseUptime(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseUptime(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseUptime_Invalid(t *testing.T) {
	if _, err := ParseUptime("forever"); !errors.Is(err, RegexStatusUptime) {
		t.Errorf("ParseUptime() error = %v, want %v", err, RegexStatusUptime)
	}
}

func TestParseUptime_Overflow(t *testing.T) {
	if d, err := ParseUptime("99999999999 years"); !errors.Is(err, RegexStatusUptime) {
		t.Errorf("ParseUptime() = %v, %v, want %v", d, err, RegexStatusUptime)
	}
	if _, err := ParseUptime("290 years"); err != nil {
		t.Errorf("ParseUptime(290 years) error = %v", err)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"comma separated", "a, b, c", []string{"a", "b", "c"}},
		{"spinner prefix", "\r-\r  \rAlbania, Argentina, United_States\n", []string{"Albania", "Argentina", "United_States"}},
		{"whitespace separated", "Africa_The_Middle_East_And_India\tP2P\n", []string{"Africa_The_Middle_East_And_India", "P2P"}},
		{"empty", "", nil},
		{"no words", "  ,\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseAccount(t *testing.T) {
	account, err := ParseAccount(accountOutput)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}

	want := &Account{
		Email:   "user@example.com",
		Active:  true,
		Expires: time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC),
	}
	if !reflect.DeepEqual(account, want) {
		t.Errorf("ParseAccount() = %+v, want %+v", account, want)
	}
}

func TestParseAccount_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want RegexError
	}{
		{"nothing", "Please try again later.\n", RegexAccount},
		{"no email", "VPN Service: Active (Expires on Sep 7th, 2025)\n", RegexAccountEmail},
		{"no expiry", "Email Address: user@example.com\nVPN Service: Inactive\n", RegexAccountExpires},
		{"bad month", "Email Address: user@example.com\nVPN Service: Active (Expires on Foo 7th, 2025)\n", RegexAccountExpires},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccount(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseAccount() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseSettings(t *testing.T) {
	settings, err := ParseSettings(settingsOutput)
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}

	obfuscate := false
	want := Settings{
		Technology:  OpenVPN,
		Protocol:    TCP,
		Firewall:    true,
		KillSwitch:  false,
		CyberSec:    true,
		Obfuscate:   &obfuscate,
		Notify:      true,
		AutoConnect: false,
		IPv6:        false,
		DNS:         []netip.Addr{netip.MustParseAddr("1.1.1.1"), netip.MustParseAddr("8.8.8.8")},
	}
	if !reflect.DeepEqual(settings, want) {
		t.Errorf("ParseSettings() = %+v, want %+v", settings, want)
	}
}

func TestParseSettings_NordLynx(t *testing.T) {
	text := `Technology: NORDLYNX
Firewall: enabled
Kill Switch: enabled
CyberSec: disabled
Notify: disabled
Auto-connect: enabled
IPv6: enabled
DNS: disabled
`
	settings, err := ParseSettings(text)
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}
	if settings.Protocol != UDP {
		t.Errorf("Protocol = %v, want %v", settings.Protocol, UDP)
	}
	if settings.Obfuscate != nil {
		t.Errorf("Obfuscate = %v, want nil", *settings.Obfuscate)
	}
	if settings.DNS != nil {
		t.Errorf("DNS = %v, want nil", settings.DNS)
	}
	if !settings.KillSwitch || !settings.AutoConnect || !settings.IPv6 {
		t.Errorf("ParseSettings() = %+v, want kill switch, auto-connect and ipv6 enabled", settings)
	}
}

func TestParseSettings_MissingField(t *testing.T) {
	tests := []struct {
		line string
		want RegexError
	}{
		{"Technology:", RegexSettingsTechnology},
		{"Protocol:", RegexSettingsProtocol},
		{"Firewall:", RegexSettingsFirewall},
		{"Kill Switch:", RegexSettingsKillSwitch},
		{"CyberSec:", RegexSettingsCyberSec},
		{"Notify:", RegexSettingsNotify},
		{"Auto-connect:", RegexSettingsAutoConnect},
		{"IPv6:", RegexSettingsIPv6},
		{"DNS:", RegexSettingsDNS},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			_, err := ParseSettings(withoutLine(settingsOutput, tt.line))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseSettings() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseConnected(t *testing.T) {
	text := "Connecting to Germany #507 (de507.nordvpn.com)\nYou are connected to Germany #507 (de507.nordvpn.com)!\n"

	got, err := ParseConnected(text)
	if err != nil {
		t.Fatalf("ParseConnected() error = %v", err)
	}
	want := Connected{Country: "Germany", Server: 507, Hostname: "de507.nordvpn.com"}
	if got != want {
		t.Errorf("ParseConnected() = %+v, want %+v", got, want)
	}

	if _, err := ParseConnected("Whoops! Connection failed.\n"); !errors.Is(err, RegexConnect) {
		t.Errorf("ParseConnected() error = %v, want %v", err, RegexConnect)
	}
}

func TestParseLoginURL(t *testing.T) {
	text := "Continue in the browser: https://api.nordvpn.com/v1/users/oauth/login-redirect?attempt=abc\n"

	u, err := ParseLoginURL(text)
	if err != nil {
		t.Fatalf("ParseLoginURL() error = %v", err)
	}
	if u.Host != "api.nordvpn.com" || u.Query().Get("attempt") != "abc" {
		t.Errorf("ParseLoginURL() = %v", u)
	}

	if _, err := ParseLoginURL("Continue in the browser: not-a-url\n"); !errors.Is(err, RegexLogin) {
		t.Errorf("ParseLoginURL() error = %v, want %v", err, RegexLogin)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("NordVPN Version 3.16.1\n")
	if err != nil {
		t.Fatalf("ParseVersion() error = %v", err)
	}
	if v.String() != "3.16.1" {
		t.Errorf("ParseVersion() = %v, want 3.16.1", v)
	}
	if !Supported(v) {
		t.Errorf("Supported(%v) = false, want true", v)
	}

	old, err := ParseVersion("NordVPN Version 3.7.4\n")
	if err != nil {
		t.Fatalf("ParseVersion() error = %v", err)
	}
	if Supported(old) {
		t.Errorf("Supported(%v) = true, want false", old)
	}

	if _, err := ParseVersion("NordVPN Version 3\n"); !errors.Is(err, RegexVersion) {
		t.Errorf("ParseVersion() error = %v, want %v", err, RegexVersion)
	}
}

func TestParseTechnologyAndProtocol(t *testing.T) {
	if got, err := ParseTechnology("nordlynx"); err != nil || got != NordLynx {
		t.Errorf("ParseTechnology(nordlynx) = %v, %v", got, err)
	}
	if got, err := ParseProtocol("Tcp"); err != nil || got != TCP {
		t.Errorf("ParseProtocol(Tcp) = %v, %v", got, err)
	}

	_, err := ParseTechnology("ikev2")
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Token != "ikev2" {
		t.Errorf("ParseTechnology(ikev2) error = %v, want *TokenError", err)
	}
}

func TestConnectOption_Args(t *testing.T) {
	tests := []struct {
		name string
		opt  ConnectOption
		want []string
	}{
		{"quick", ConnectOption{}, nil},
		{"country", ByCountry("Germany"), []string{"Germany"}},
		{"server", ByServer("de507"), []string{"de507"}},
		{"code", ByCountryCode("de"), []string{"de"}},
		{"city", ByCity("Berlin"), []string{"Berlin"}},
		{"group", ByGroup("P2P"), []string{"P2P"}},
		{"country city", ByCountryCity("Germany", "Berlin"), []string{"Germany", "Berlin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opt.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

// withoutLine drops every line starting with prefix.
func withoutLine(text, prefix string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
