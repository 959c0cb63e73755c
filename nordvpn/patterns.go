package nordvpn

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// groupPlaceholder is replaced by the capture-group name when a shared
// template is embedded in a field pattern.
const groupPlaceholder = "GROUP_NAME"

// Shared templates.
const (
	lineEnd           = `\s*(?:\n|$)`
	ipv4OrIPv6        = `(?P<GROUP_NAME>(?i)(?:[\da-f]{0,4}:){1,7}[\da-f]{0,4}|(?:\d{1,3}\.){3}\d{1,3})`
	openVPNOrNordLynx = `(?P<GROUP_NAME>(?i)OPENVPN|NORDLYNX)`
	tcpOrUDP          = `(?P<GROUP_NAME>(?i)TCP|UDP)`
	enabledOrDisabled = `(?P<GROUP_NAME>(?i)enabled|disabled)`

	// unrelatedLine consumes a line no field pattern recognises, so a block
	// may carry extra lines between the ones we parse.
	unrelatedLine = `[^\r\n]*[\r\n]`
)

// group instantiates a shared template with a capture-group name.
func group(template, name string) string {
	return strings.ReplaceAll(template, groupPlaceholder, name)
}

// block joins field patterns into a composite that captures fields in any
// order and subset. Field patterns are tried before unrelatedLine at every
// position, so a recognisable field is never swallowed as an unrelated line.
func block(fields ...string) string {
	return fmt.Sprintf(`(?:[ \t]*(?:%s)|%s)+`, strings.Join(fields, "|"), unrelatedLine)
}

// Account fields.
const (
	accountEmail   = `Email Address:\s+(?P<email>.+)` + lineEnd
	accountActive  = `VPN Service:\s+(?P<active>(?i)[a-z]+)\s*`
	accountExpires = `\(Expires on\s+(?P<expires_month>(?i)[a-z]{3})\s+(?P<expires_day>\d+)(?i:st|nd|rd|th),\s+(?P<expires_year>\d{4})\)`
)

// Status fields.
var (
	statusHostname   = `Current server:\s+(?P<hostname>[\w\-\.]+)` + lineEnd
	statusCountry    = `Country:\s+(?P<country>(?i)[a-z_ ]+[a-z_ ])` + lineEnd
	statusCity       = `City:\s+(?P<city>(?i)[a-z_ ]+[a-z_ ])` + lineEnd
	statusIP         = `Server IP:\s+` + group(ipv4OrIPv6, "ip") + lineEnd
	statusTechnology = `Current technology:\s+` + group(openVPNOrNordLynx, "technology") + lineEnd
	statusProtocol   = `Current protocol:\s+` + group(tcpOrUDP, "protocol") + lineEnd
	statusTransfer   = `Transfer:\s+(?i:(?P<transfer_received>(?:\d+\.)?\d+\s+[a-z]+)\s+received,\s+(?P<transfer_sent>(?:\d+\.)?\d+\s+[a-z]+)\s+sent)` + lineEnd
	statusUptime     = `Uptime:\s+(?P<uptime>` + uptimeComponents + `)` + lineEnd
)

// uptimeComponents matches "2 years 3 months 1 day 4 hours 5 minutes 6 seconds"
// with every component optional.
const uptimeComponents = `(?i:` +
	`(?:(?P<uptime_years>\d+)\s+years?\s*)?` +
	`(?:(?P<uptime_months>\d+)\s+months?\s*)?` +
	`(?:(?P<uptime_days>\d+)\s+days?\s*)?` +
	`(?:(?P<uptime_hours>\d+)\s+hours?\s*)?` +
	`(?:(?P<uptime_minutes>\d+)\s+minutes?\s*)?` +
	`(?:(?P<uptime_seconds>\d+)\s+seconds?\s*)?)`

// Settings fields.
var (
	settingsTechnology  = `Technology:\s+` + group(openVPNOrNordLynx, "technology") + lineEnd
	settingsProtocol    = `Protocol:\s+` + group(tcpOrUDP, "protocol") + lineEnd
	settingsFirewall    = `Firewall:\s+` + group(enabledOrDisabled, "firewall") + lineEnd
	settingsKillSwitch  = `Kill Switch:\s+` + group(enabledOrDisabled, "killswitch") + lineEnd
	settingsCyberSec    = `CyberSec:\s+` + group(enabledOrDisabled, "cybersec") + lineEnd
	settingsObfuscate   = `Obfuscate:\s+` + group(enabledOrDisabled, "obfuscate") + lineEnd
	settingsNotify      = `Notify:\s+` + group(enabledOrDisabled, "notify") + lineEnd
	settingsAutoConnect = `Auto-connect:\s+` + group(enabledOrDisabled, "autoconnect") + lineEnd
	settingsIPv6        = `IPv6:\s+` + group(enabledOrDisabled, "ipv6") + lineEnd
	settingsDNS         = `DNS:\s+(?:` + group(enabledOrDisabled, "dns_disabled") +
		`|(?:` + group(ipv4OrIPv6, "dns_primary") + `(?:,\s+)?)?` +
		`(?:` + group(ipv4OrIPv6, "dns_secondary") + `(?:,\s+)?)?` +
		group(ipv4OrIPv6, "dns_tertiary") + `?)` + lineEnd
)

// Single-shape patterns.
const (
	connectCountryServerHostname = `You are connected to\s+(?P<country>(?i)[a-z_ ]+)\s+#(?P<server>\d+)\s+\((?P<hostname>[\w\-\.]+)\)!`
	loginURL                     = `Continue in the browser:\s+(?P<url>\S+)` + lineEnd
	invalidSettingName           = `Command '(?P<name>.+)' doesn't exist\.`
	versionNumber                = `(?P<version>\d+\.\d+\.\d+)` + lineEnd
	wordList                     = `(\w+)(?:,\s*|\s+|$)`
)

// Compiled patterns, built on first use and shared read-only afterwards.
var (
	accountPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(block(accountEmail, accountActive, accountExpires))
	})
	statusPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(block(
			statusHostname,
			statusCountry,
			statusCity,
			statusIP,
			statusTechnology,
			statusProtocol,
			statusTransfer,
			statusUptime,
		))
	})
	settingsPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(block(
			settingsTechnology,
			settingsProtocol,
			settingsFirewall,
			settingsKillSwitch,
			settingsCyberSec,
			settingsObfuscate,
			settingsNotify,
			settingsAutoConnect,
			settingsIPv6,
			settingsDNS,
		))
	})
	connectPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(connectCountryServerHostname)
	})
	loginPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(loginURL)
	})
	invalidSettingPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(invalidSettingName)
	})
	versionPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(versionNumber)
	})
	wordListPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(wordList)
	})
	uptimePattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`^\s*` + uptimeComponents + `\s*$`)
	})
)

// captures holds the named groups of one match. Groups that did not take
// part in the match are absent.
type captures map[string]string

// capture matches re against text and collects every participating named
// group. It returns nil when the pattern does not match at all.
func capture(re *regexp.Regexp, text string) captures {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	c := make(captures)
	for i, name := range re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		c[name] = text[loc[2*i]:loc[2*i+1]]
	}
	return c
}

// get returns a trimmed named group and whether it participated.
func (c captures) get(name string) (string, bool) {
	v, ok := c[name]
	return strings.TrimSpace(v), ok
}

// hasAny reports whether at least one of the named groups participated.
func (c captures) hasAny(names ...string) bool {
	for _, name := range names {
		if _, ok := c[name]; ok {
			return true
		}
	}
	return false
}

// ParseList extracts a comma or whitespace separated word list. It returns
// nil when the text holds no words, so empty output is distinguishable from
// an empty list.
func ParseList(text string) []string {
	matches := wordListPattern().FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		items = append(items, m[1])
	}
	return items
}
