package nordvpn

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/yllada/nordvpn-manager/common"
)

// DefaultProgram is the name of the nordvpn executable looked up in PATH.
const DefaultProgram = "nordvpn"

// MinimumVersion is the oldest tool release whose output this package parses.
const MinimumVersion = "3.12.0"

// Sentinel phrases. They are checked before the exit status because the tool
// exits non-zero for some of them.
const (
	sentinelNotLoggedIn     = "You are not logged in."
	sentinelAlreadyLoggedIn = "You are already logged in."
	sentinelLoggedOut       = "You are logged out."
	sentinelNotConnected    = "You are not connected to NordVPN."
	sentinelDisconnected    = "You are disconnected from NordVPN."
	sentinelStatusOffline   = "Disconnected"
	sentinelInvalidValue    = "The command you entered is not valid."
)

// Client runs nordvpn subcommands and maps their output onto typed values.
// Each call runs exactly one process and keeps no state between calls.
type Client struct {
	runner  Runner
	program string
	timeout time.Duration
	logger  common.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRunner replaces the process runner, e.g. with a fixture runner in tests.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithProgram sets the executable to run instead of DefaultProgram.
func WithProgram(program string) Option {
	return func(c *Client) { c.program = program }
}

// WithTimeout bounds every invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for invocation traces.
func WithLogger(l common.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client that runs the real tool with the default timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		runner:  ExecRunner{},
		program: DefaultProgram,
		timeout: common.CommandTimeout,
		logger:  common.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// command runs one subcommand and decodes its stdout.
func (c *Client) command(ctx context.Context, args ...string) (Invocation, Result, string, error) {
	inv := newInvocation(c.program, args)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("nordvpn: [%s] running %s", inv.ID, inv)
	res, err := c.runner.Run(ctx, inv.Program, inv.Args...)
	if err != nil {
		kind := KindIO
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return inv, res, "", c.fail(&CliError{Kind: kind, Invocation: inv, Err: err})
	}
	c.logger.Debug("nordvpn: [%s] exited with status %d", inv.ID, res.ExitCode)
	if len(res.Stderr) > 0 {
		c.logger.Debug("nordvpn: [%s] stderr: %s", inv.ID, strings.TrimSpace(string(res.Stderr)))
	}

	if !utf8.Valid(res.Stdout) {
		return inv, res, "", c.fail(&CliError{Kind: KindBadEncoding, Invocation: inv})
	}
	return inv, res, string(res.Stdout), nil
}

func (c *Client) fail(err *CliError) error {
	c.logger.Warn("nordvpn: [%s] %v", err.Invocation.ID, err)
	return err
}

// parseFailed attaches the invocation to a RegexError from a Parse function.
func (c *Client) parseFailed(err error, inv Invocation) error {
	var field RegexError
	if errors.As(err, &field) {
		return c.fail(regexError(field, inv))
	}
	return c.fail(&CliError{Kind: KindBadOutput, Invocation: inv, Err: err})
}

// Account returns the logged-in account, or nil when nobody is logged in.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	inv, res, stdout, err := c.command(ctx, "account")
	if err != nil {
		return nil, err
	}

	if strings.Contains(stdout, sentinelNotLoggedIn) {
		return nil, nil
	}
	if !res.Success() {
		return nil, c.fail(failedCommand(inv))
	}

	account, err := ParseAccount(stdout)
	if err != nil {
		return nil, c.parseFailed(err, inv)
	}
	return account, nil
}

// Cities lists the cities with servers in a country.
func (c *Client) Cities(ctx context.Context, country string) ([]string, error) {
	return c.list(ctx, RegexCities, "cities", country)
}

// Countries lists the countries with servers.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	return c.list(ctx, RegexCountries, "countries")
}

// Groups lists the server groups.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	return c.list(ctx, RegexGroups, "groups")
}

func (c *Client) list(ctx context.Context, field RegexError, args ...string) ([]string, error) {
	inv, res, stdout, err := c.command(ctx, args...)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, c.fail(failedCommand(inv))
	}

	items := ParseList(stdout)
	if items == nil {
		return nil, c.fail(regexError(field, inv))
	}
	return items, nil
}

// Connect connects to the server selected by opt. The zero ConnectOption
// lets the tool pick the recommended server.
func (c *Client) Connect(ctx context.Context, opt ConnectOption) (Connected, error) {
	inv, res, stdout, err := c.command(ctx, append([]string{"connect"}, opt.Args()...)...)
	if err != nil {
		return Connected{}, err
	}
	if !res.Success() {
		return Connected{}, c.fail(failedCommand(inv))
	}

	connected, err := ParseConnected(stdout)
	if err != nil {
		return Connected{}, c.parseFailed(err, inv)
	}
	return connected, nil
}

// Disconnect ends the current session. It reports false when there was no
// session to end.
func (c *Client) Disconnect(ctx context.Context) (bool, error) {
	inv, res, stdout, err := c.command(ctx, "disconnect")
	if err != nil {
		return false, err
	}

	switch {
	case strings.Contains(stdout, sentinelNotConnected):
		return false, nil
	case strings.Contains(stdout, sentinelDisconnected):
		return true, nil
	case !res.Success():
		return false, c.fail(failedCommand(inv))
	}
	return false, c.fail(badOutput(inv))
}

// Login starts the browser login flow and returns the URL to open, or nil
// when an account is already logged in.
func (c *Client) Login(ctx context.Context) (*url.URL, error) {
	inv, res, stdout, err := c.command(ctx, "login")
	if err != nil {
		return nil, err
	}

	if strings.Contains(stdout, sentinelAlreadyLoggedIn) {
		return nil, nil
	}
	if !res.Success() {
		return nil, c.fail(failedCommand(inv))
	}

	u, err := ParseLoginURL(stdout)
	if err != nil {
		return nil, c.parseFailed(err, inv)
	}
	return u, nil
}

// Logout logs the account out. It reports false when nobody was logged in.
func (c *Client) Logout(ctx context.Context) (bool, error) {
	inv, res, stdout, err := c.command(ctx, "logout")
	if err != nil {
		return false, err
	}

	switch {
	case strings.Contains(stdout, sentinelNotLoggedIn):
		return false, nil
	case strings.Contains(stdout, sentinelLoggedOut):
		return true, nil
	case !res.Success():
		return false, c.fail(failedCommand(inv))
	}
	return false, c.fail(badOutput(inv))
}

// Settings returns the tool's current configuration.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	inv, res, stdout, err := c.command(ctx, "settings")
	if err != nil {
		return Settings{}, err
	}
	if !res.Success() {
		return Settings{}, c.fail(failedCommand(inv))
	}

	settings, err := ParseSettings(stdout)
	if err != nil {
		return Settings{}, c.parseFailed(err, inv)
	}
	return settings, nil
}

// Status returns the current session, or nil when disconnected.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	inv, res, stdout, err := c.command(ctx, "status")
	if err != nil {
		return nil, err
	}

	if strings.Contains(stdout, sentinelStatusOffline) {
		return nil, nil
	}
	if !res.Success() {
		return nil, c.fail(failedCommand(inv))
	}

	status, err := ParseStatus(stdout)
	if err != nil {
		return nil, c.parseFailed(err, inv)
	}
	return status, nil
}

// Version returns the tool's version.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	inv, res, stdout, err := c.command(ctx, "version")
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, c.fail(failedCommand(inv))
	}

	v, err := ParseVersion(stdout)
	if err != nil {
		return nil, c.parseFailed(err, inv)
	}
	return v, nil
}

// Supported reports whether v is at least MinimumVersion.
func Supported(v *semver.Version) bool {
	constraint, err := semver.NewConstraint(">= " + MinimumVersion)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
