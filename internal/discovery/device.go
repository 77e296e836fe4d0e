package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a host advertising an HTTP service on the network
type Device struct {
	// Instance is the mDNS service instance name (e.g., "IPC-HFW2431")
	Instance string

	// Hostname is the mDNS hostname (e.g., "IPC-7H0B6C3.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was advertised
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s", d.Instance, d.Hostname, d.Address())
}

// Address returns host:port in the form accepted by rpc.NewClient.
// The port is omitted when it is the HTTP default.
func (d *Device) Address() string {
	if d.Port == DefaultPort {
		if net.ParseIP(d.IP).To4() == nil {
			return "[" + d.IP + "]"
		}
		return d.IP
	}
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
