// Package nordvpn wraps the nordvpn command-line client.
//
// Every operation runs one nordvpn subcommand, captures its stdout and maps
// the human-readable report onto a typed value:
//
//   - Account, Status and Settings for the reporting subcommands
//   - Countries, Cities and Groups for the server lists
//   - Connect, Disconnect, Login and Logout for session changes
//   - Set and Applier for configuration changes
//
// # Output Parsing
//
// Each report shape has one composite pattern whose fields may appear in
// any order. Known status phrases such as "You are not logged in." are
// recognised before the exit status is looked at, since the tool exits
// non-zero for some of them. A report that matches none of its fields
// fails with the RegexError of the whole target; otherwise the first
// missing mandatory field is reported with its own RegexError.
//
// The Parse functions work on plain strings, so fixtures can be tested
// without the tool installed. Client methods add the process handling.
//
// # Errors
//
// Client methods return *CliError. It unwraps to a kind sentinel such as
// ErrFailedCommand, to the RegexError for parse failures and to the
// underlying cause:
//
//	status, err := client.Status(ctx)
//	if errors.Is(err, nordvpn.RegexStatusIP) {
//	    // the server IP line changed format
//	}
//
// # Thread Safety
//
// Client is safe for concurrent use; each call starts its own process.
// Applier is not.
package nordvpn
