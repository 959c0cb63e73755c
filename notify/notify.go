// Package notify sends desktop notifications for VPN session changes over
// the freedesktop notification service on the session D-Bus.
package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/nordvpn"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = busName + ".Notify"
)

// Urgency levels understood by freedesktop notification daemons.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// NotificationType represents the type of notification.
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a desktop notification.
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	// Icon overrides the icon derived from Type.
	Icon string
}

func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "network-vpn"
	}
}

func (n Notification) urgency() byte {
	switch n.Type {
	case NotificationError:
		return urgencyCritical
	case NotificationWarning:
		return urgencyNormal
	default:
		return urgencyLow
	}
}

// Sender shows notifications.
type Sender interface {
	Show(n Notification) error
}

// busObject is the part of dbus.BusObject used here.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopNotifier talks to the notification daemon. It implements Sender.
type DesktopNotifier struct {
	mu   sync.Mutex
	conn *dbus.Conn
	obj  busObject
}

// NewDesktopNotifier connects to the session bus.
func NewDesktopNotifier() (*DesktopNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	return &DesktopNotifier{
		conn: conn,
		obj:  conn.Object(busName, dbus.ObjectPath(objectPath)),
	}, nil
}

// Show implements Sender.
func (d *DesktopNotifier) Show(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.urgency()),
	}
	call := d.obj.Call(notifyCall, 0,
		common.AppName, // app_name
		uint32(0),      // replaces_id
		n.icon(),
		n.Title,
		n.Message,
		[]string{}, // actions
		hints,
		int32(-1), // expire_timeout: server default
	)
	if call.Err != nil {
		return fmt.Errorf("showing notification: %w", call.Err)
	}
	return nil
}

// Close releases the bus connection.
func (d *DesktopNotifier) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Disabled drops every notification.
type Disabled struct{}

func (Disabled) Show(Notification) error { return nil }

// New returns a DesktopNotifier, or Disabled when notifications are turned
// off or no session bus is reachable.
func New(enabled bool) Sender {
	if !enabled {
		return Disabled{}
	}
	d, err := NewDesktopNotifier()
	if err != nil {
		common.LogWarn("Desktop notifications disabled: %v", err)
		return Disabled{}
	}
	return d
}

// NotifyConnected reports a new session.
func NotifyConnected(s Sender, c nordvpn.Connected) {
	show(s, Notification{
		Title:   "VPN Connected",
		Message: fmt.Sprintf("Connected to %s #%d (%s)", c.Country, c.Server, c.Hostname),
		Type:    NotificationSuccess,
	})
}

// NotifyDisconnected reports the end of a session.
func NotifyDisconnected(s Sender) {
	show(s, Notification{
		Title:   "VPN Disconnected",
		Message: "You are disconnected from NordVPN",
		Type:    NotificationInfo,
		Icon:    "network-vpn-disconnected",
	})
}

// NotifyError reports a failed operation.
func NotifyError(s Sender, action string, err error) {
	show(s, Notification{
		Title:   "NordVPN Error",
		Message: action + ": " + err.Error(),
		Type:    NotificationError,
		Icon:    "network-vpn-error",
	})
}

// NotifyStatusChange compares two status samples and reports a session
// that started, ended or moved to another server.
func NotifyStatusChange(s Sender, prev, cur *nordvpn.Status) {
	switch {
	case prev != nil && cur == nil:
		NotifyDisconnected(s)
	case cur != nil && (prev == nil || prev.Hostname != cur.Hostname):
		show(s, Notification{
			Title:   "VPN Connected",
			Message: fmt.Sprintf("Connected to %s (%s, %s)", cur.Hostname, cur.City, cur.Country),
			Type:    NotificationSuccess,
		})
	}
}

func show(s Sender, n Notification) {
	if err := s.Show(n); err != nil {
		common.LogWarn("Notification %q not shown: %v", n.Title, err)
	}
}
