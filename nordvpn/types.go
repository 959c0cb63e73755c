package nordvpn

import (
	"net/netip"
	"strings"
	"time"
)

// Account is the parsed output of "nordvpn account".
type Account struct {
	Email   string
	Active  bool
	Expires time.Time
}

// Connected is the parsed output of a successful "nordvpn connect".
type Connected struct {
	Country  string
	Server   uint32
	Hostname string
}

// Status is the parsed output of "nordvpn status" while connected.
type Status struct {
	Hostname   string
	Country    string
	City       string
	IP         netip.Addr
	Technology Technology
	Protocol   Protocol
	Transfer   Transfer
	Uptime     time.Duration
}

// Transfer holds byte counts for the current session.
type Transfer struct {
	Received uint64
	Sent     uint64
}

// Technology is the tunnel technology used by the tool.
type Technology int

const (
	OpenVPN Technology = iota + 1
	NordLynx
)

// ParseTechnology converts a case-insensitive token into a Technology.
func ParseTechnology(s string) (Technology, error) {
	switch {
	case strings.EqualFold(s, "openvpn"):
		return OpenVPN, nil
	case strings.EqualFold(s, "nordlynx"):
		return NordLynx, nil
	}
	return 0, &TokenError{Type: "technology", Token: s}
}

// String returns the token the tool expects, e.g. "NORDLYNX".
func (t Technology) String() string {
	switch t {
	case OpenVPN:
		return "OPENVPN"
	case NordLynx:
		return "NORDLYNX"
	default:
		return "UNKNOWN"
	}
}

// Protocol is the transport protocol used by OpenVPN.
type Protocol int

const (
	TCP Protocol = iota + 1
	UDP
)

// ParseProtocol converts a case-insensitive token into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch {
	case strings.EqualFold(s, "tcp"):
		return TCP, nil
	case strings.EqualFold(s, "udp"):
		return UDP, nil
	}
	return 0, &TokenError{Type: "protocol", Token: s}
}

// String returns the token the tool expects, e.g. "UDP".
func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return "UNKNOWN"
	}
}

// connectKind selects the positional arguments of a connect invocation.
type connectKind int

const (
	connectCountry connectKind = iota + 1
	connectServer
	connectCountryCode
	connectCity
	connectGroup
	connectCountryCity
)

// ConnectOption selects where "nordvpn connect" should connect to.
// Build one with ByCountry, ByServer, ByCountryCode, ByCity, ByGroup or ByCountryCity.
type ConnectOption struct {
	kind    connectKind
	country string
	value   string
}

// ByCountry connects to the best server in a country, e.g. "Germany".
func ByCountry(country string) ConnectOption {
	return ConnectOption{kind: connectCountry, value: country}
}

// ByServer connects to a specific server, e.g. "de123".
func ByServer(server string) ConnectOption {
	return ConnectOption{kind: connectServer, value: server}
}

// ByCountryCode connects to the best server for a country code, e.g. "de".
func ByCountryCode(code string) ConnectOption {
	return ConnectOption{kind: connectCountryCode, value: code}
}

// ByCity connects to the best server in a city, e.g. "Berlin".
func ByCity(city string) ConnectOption {
	return ConnectOption{kind: connectCity, value: city}
}

// ByGroup connects to the best server in a server group, e.g. "P2P".
func ByGroup(group string) ConnectOption {
	return ConnectOption{kind: connectGroup, value: group}
}

// ByCountryCity connects to the best server in a city of a country.
func ByCountryCity(country, city string) ConnectOption {
	return ConnectOption{kind: connectCountryCity, country: country, value: city}
}

// Args returns the positional arguments appended to "connect".
func (o ConnectOption) Args() []string {
	switch o.kind {
	case connectCountryCity:
		return []string{o.country, o.value}
	case 0:
		return nil
	default:
		return []string{o.value}
	}
}

// Settings mirrors the tool's configuration as reported by "nordvpn settings".
type Settings struct {
	Technology  Technology
	Protocol    Protocol
	Firewall    bool
	KillSwitch  bool
	CyberSec    bool
	Obfuscate   *bool
	Notify      bool
	AutoConnect bool
	IPv6        bool
	// DNS is nil when custom DNS is disabled.
	DNS []netip.Addr
}
