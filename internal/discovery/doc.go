// Package discovery finds cameras on the local network using mDNS.
//
// Most IP cameras advertise their web interface as an "_http._tcp" service.
// A scan collects every such advertisement for the timeout period and
// returns one Device per address. Use Filter to narrow the result to a
// vendor or model prefix.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Filter = "IPC"
//	devices, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Println(d.Instance, d.Address())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
