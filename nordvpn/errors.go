package nordvpn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yllada/nordvpn-manager/common"
)

// RegexError identifies the pattern, or the named field inside a pattern,
// that failed to match the tool's output. Each mandatory capture group has
// exactly one variant.
type RegexError int

const (
	RegexAccount RegexError = iota + 1
	RegexAccountEmail
	RegexAccountActive
	RegexAccountExpires
	RegexCities
	RegexConnect
	RegexCountries
	RegexGroups
	RegexLogin
	RegexSettings
	RegexSettingsTechnology
	RegexSettingsProtocol
	RegexSettingsFirewall
	RegexSettingsKillSwitch
	RegexSettingsCyberSec
	RegexSettingsObfuscate
	RegexSettingsNotify
	RegexSettingsAutoConnect
	RegexSettingsIPv6
	RegexSettingsDNS
	RegexStatus
	RegexStatusHostname
	RegexStatusCountry
	RegexStatusCity
	RegexStatusIP
	RegexStatusTechnology
	RegexStatusProtocol
	RegexStatusTransfer
	RegexStatusUptime
	RegexVersion
)

var regexErrorNames = map[RegexError]string{
	RegexAccount:             "account",
	RegexAccountEmail:        "account email",
	RegexAccountActive:       "account active",
	RegexAccountExpires:      "account expires",
	RegexCities:              "cities",
	RegexConnect:             "connect",
	RegexCountries:           "countries",
	RegexGroups:              "groups",
	RegexLogin:               "login",
	RegexSettings:            "settings",
	RegexSettingsTechnology:  "settings technology",
	RegexSettingsProtocol:    "settings protocol",
	RegexSettingsFirewall:    "settings firewall",
	RegexSettingsKillSwitch:  "settings kill switch",
	RegexSettingsCyberSec:    "settings cybersec",
	RegexSettingsObfuscate:   "settings obfuscate",
	RegexSettingsNotify:      "settings notify",
	RegexSettingsAutoConnect: "settings auto-connect",
	RegexSettingsIPv6:        "settings ipv6",
	RegexSettingsDNS:         "settings dns",
	RegexStatus:              "status",
	RegexStatusHostname:      "status hostname",
	RegexStatusCountry:       "status country",
	RegexStatusCity:          "status city",
	RegexStatusIP:            "status ip",
	RegexStatusTechnology:    "status technology",
	RegexStatusProtocol:      "status protocol",
	RegexStatusTransfer:      "status transfer",
	RegexStatusUptime:        "status uptime",
	RegexVersion:             "version",
}

// String returns the name of the pattern or field.
func (e RegexError) String() string {
	if name, ok := regexErrorNames[e]; ok {
		return name
	}
	return "unknown"
}

func (e RegexError) Error() string {
	return e.String() + " pattern failed to match"
}

// ErrorKind classifies a CliError.
type ErrorKind int

const (
	// KindIO means the process could not be spawned.
	KindIO ErrorKind = iota + 1
	// KindTimeout means the process did not finish before the command timeout.
	KindTimeout
	// KindFailedCommand means the process exited unsuccessfully without a recognised sentinel.
	KindFailedCommand
	// KindBadEncoding means stdout was not valid UTF-8.
	KindBadEncoding
	// KindBadOutput means the output matched none of the expected shapes.
	KindBadOutput
	// KindRegex means a pattern or a mandatory field failed to match.
	KindRegex
	// KindInvalidSettingName means the tool does not know the setting.
	KindInvalidSettingName
	// KindInvalidSettingValue means the tool rejected the values for a known setting.
	KindInvalidSettingValue
)

// Sentinel errors, one per ErrorKind. Check them with errors.Is.
var (
	ErrIO                  = errors.New("unable to create command")
	ErrTimeout             = common.ErrTimeout
	ErrFailedCommand       = errors.New("command terminated unsuccessfully")
	ErrBadEncoding         = errors.New("failed to get command output as UTF-8")
	ErrBadOutput           = errors.New("command output did not match as expected")
	ErrRegex               = errors.New("a regex pattern failed to match")
	ErrInvalidSettingName  = errors.New("setting does not exist")
	ErrInvalidSettingValue = errors.New("the provided value for a setting is malformed or invalid")
)

var kindSentinels = map[ErrorKind]error{
	KindIO:                  ErrIO,
	KindTimeout:             ErrTimeout,
	KindFailedCommand:       ErrFailedCommand,
	KindBadEncoding:         ErrBadEncoding,
	KindBadOutput:           ErrBadOutput,
	KindRegex:               ErrRegex,
	KindInvalidSettingName:  ErrInvalidSettingName,
	KindInvalidSettingValue: ErrInvalidSettingValue,
}

// CliError is returned by every Client operation. It keeps the invocation
// that produced it so callers can show the failed command without re-running it.
type CliError struct {
	Kind       ErrorKind
	Invocation Invocation
	// Regex is set for KindRegex.
	Regex RegexError
	// Setting and Values are set for the setting kinds.
	Setting string
	Values  []string
	// Err is the underlying cause, if any.
	Err error
}

func (e *CliError) Error() string {
	var b strings.Builder
	b.WriteString(kindSentinels[e.Kind].Error())

	switch e.Kind {
	case KindRegex:
		fmt.Fprintf(&b, " (%s)", e.Regex)
	case KindInvalidSettingName:
		fmt.Fprintf(&b, " (%s)", e.Setting)
	case KindInvalidSettingValue:
		fmt.Fprintf(&b, " (%s %s)", e.Setting, strings.Join(e.Values, " "))
	}

	if e.Invocation.Program != "" {
		fmt.Fprintf(&b, ": %s", e.Invocation)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the kind sentinel, the RegexError and the cause.
func (e *CliError) Unwrap() []error {
	errs := []error{kindSentinels[e.Kind]}
	if e.Kind == KindRegex {
		errs = append(errs, e.Regex)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func regexError(field RegexError, inv Invocation) *CliError {
	return &CliError{Kind: KindRegex, Invocation: inv, Regex: field}
}

func failedCommand(inv Invocation) *CliError {
	return &CliError{Kind: KindFailedCommand, Invocation: inv}
}

func badOutput(inv Invocation) *CliError {
	return &CliError{Kind: KindBadOutput, Invocation: inv}
}

// TokenError is returned when a technology or protocol token is not recognised.
type TokenError struct {
	Type  string
	Token string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Type, e.Token)
}

// UpdateError reports a bulk settings update that stopped part way.
// Settings listed in Applied were changed on the tool and stay changed.
type UpdateError struct {
	Applied []string
	Failed  string
	Err     error
}

func (e *UpdateError) Error() string {
	if len(e.Applied) == 0 {
		return fmt.Sprintf("update stopped at %s: %v", e.Failed, e.Err)
	}
	return fmt.Sprintf("update stopped at %s after applying %s: %v",
		e.Failed, strings.Join(e.Applied, ", "), e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
