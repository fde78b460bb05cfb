package entryserver

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// BindError reports that no port in the scanned range could be bound.
type BindError struct {
	Host  string
	First int
	Last  int
	Err   error // the last bind failure
}

func (e *BindError) Error() string {
	return fmt.Sprintf("entryserver: no free port on %s in %d-%d: %v", e.Host, e.First, e.Last, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// listenScan binds the first free TCP port starting at preferred and trying at
// most limit consecutive ports. A port that fails to bind is skipped; an
// unresolvable host aborts the scan.
func listenScan(host string, preferred, limit int) (net.Listener, error) {
	if limit < 1 {
		limit = 1
	}
	last := preferred + limit - 1
	if last > 65535 {
		last = 65535
	}

	var lastErr error
	for port := preferred; port <= last; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, nil
		}
		lastErr = err
		var dnsErr *net.DNSError
		var addrErr *net.AddrError
		if errors.As(err, &dnsErr) || errors.As(err, &addrErr) {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.New("empty port range")
	}
	return nil, &BindError{Host: host, First: preferred, Last: last, Err: lastErr}
}

// LocalIP returns the address this host uses to reach the local network, or
// 127.0.0.1 when it cannot be determined. No packet is sent: dialing UDP only
// selects a route.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer func() { _ = conn.Close() }()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// displayHost picks the host shown in the server URL: the bind host when it
// names a concrete interface, the resolved LAN address otherwise.
func displayHost(bindHost string, resolve func() string) string {
	ip := net.ParseIP(bindHost)
	if bindHost == "" || (ip != nil && ip.IsUnspecified()) {
		return resolve()
	}
	return bindHost
}
