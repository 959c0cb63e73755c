package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "NordVPN Manager"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "nordvpn-manager"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	LogFileName     = "nordvpn-manager.log"
	HistoryFileName = "shell_history"
)

// Default timeouts and intervals.
const (
	// CommandTimeout bounds one invocation of the nordvpn tool.
	CommandTimeout = 30 * time.Second
	// WatchInterval is how often the live status view polls the tool.
	WatchInterval = 5 * time.Second
	// MetricsAddress is where the Prometheus exporter listens by default.
	MetricsAddress = "127.0.0.1:9871"
	// ShutdownTimeout bounds the graceful stop of the metrics server.
	ShutdownTimeout = 5 * time.Second
)
