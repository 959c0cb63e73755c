// Package common provides the constants, sentinel errors, interfaces and
// logger shared by the NordVPN Manager packages.
//
//   - Constants: application name, file names, timeouts and default addresses
//   - Errors: sentinel errors checked with errors.Is
//   - Interfaces: Logger
//   - Logger: levelled logging to stdout and a rotated log file
//
// # Usage
//
//	common.LogInfo("connected to %s", hostname)
//
//	if errors.Is(err, common.ErrTimeout) {
//	    // the nordvpn tool did not answer in time
//	}
package common
