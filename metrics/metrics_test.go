package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yllada/nordvpn-manager/nordvpn"
)

type fakeSource struct {
	status *nordvpn.Status
	err    error
}

func (f fakeSource) Status(ctx context.Context) (*nordvpn.Status, error) {
	return f.status, f.err
}

var connected = &nordvpn.Status{
	Hostname:   "de507.nordvpn.com",
	Country:    "Germany",
	City:       "Berlin",
	IP:         netip.MustParseAddr("185.130.184.139"),
	Technology: nordvpn.NordLynx,
	Protocol:   nordvpn.UDP,
	Transfer:   nordvpn.Transfer{Received: 2097152, Sent: 512000},
	Uptime:     90 * time.Second,
}

func TestCollector_Connected(t *testing.T) {
	c := newStatusCollector(fakeSource{status: connected}, time.Second)

	expected := `
# HELP nordvpn_connected Whether a VPN session is active.
# TYPE nordvpn_connected gauge
nordvpn_connected 1
# HELP nordvpn_connection_info Current server details; always 1.
# TYPE nordvpn_connection_info gauge
nordvpn_connection_info{city="Berlin",country="Germany",hostname="de507.nordvpn.com",ip="185.130.184.139",protocol="UDP",technology="NORDLYNX"} 1
# HELP nordvpn_transfer_received_bytes Bytes received in the current session.
# TYPE nordvpn_transfer_received_bytes gauge
nordvpn_transfer_received_bytes 2.097152e+06
# HELP nordvpn_transfer_sent_bytes Bytes sent in the current session.
# TYPE nordvpn_transfer_sent_bytes gauge
nordvpn_transfer_sent_bytes 512000
# HELP nordvpn_up Whether the last status query succeeded.
# TYPE nordvpn_up gauge
nordvpn_up 1
# HELP nordvpn_uptime_seconds Age of the current session.
# TYPE nordvpn_uptime_seconds gauge
nordvpn_uptime_seconds 90
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestCollector_Disconnected(t *testing.T) {
	c := newStatusCollector(fakeSource{}, time.Second)

	if got := testutil.CollectAndCount(c); got != 2 {
		t.Errorf("CollectAndCount() = %d, want 2", got)
	}
	expected := `
# HELP nordvpn_connected Whether a VPN session is active.
# TYPE nordvpn_connected gauge
nordvpn_connected 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "nordvpn_connected"); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestCollector_Failure(t *testing.T) {
	c := newStatusCollector(fakeSource{err: errors.New("daemon down")}, time.Second)

	if got := testutil.CollectAndCount(c); got != 1 {
		t.Errorf("CollectAndCount() = %d, want 1", got)
	}
	expected := `
# HELP nordvpn_up Whether the last status query succeeded.
# TYPE nordvpn_up gauge
nordvpn_up 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "nordvpn_up"); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestHandler(t *testing.T) {
	server := httptest.NewServer(Handler(NewRegistry(fakeSource{status: connected}, time.Second)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", fakeSource{}, time.Second)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
