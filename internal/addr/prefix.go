package addr

import (
	"net/netip"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// Prefix returns the grouping prefix of an IP address: the first three
// octets for IPv4 ("10.1.2") and the first three hextets of the compressed
// form for IPv6. Plain addresses, CIDR notation and multiaddrs carrying an
// ip4 or ip6 component are accepted. ok is false for anything unparseable.
func Prefix(raw string) (prefix string, ok bool) {
	ip, ok := parse(strings.TrimSpace(raw))
	if !ok {
		return "", false
	}

	s := ip.String()
	if ip.Is4() {
		return s[:strings.LastIndex(s, ".")], true
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ":"), true
}

func parse(raw string) (netip.Addr, bool) {
	if raw == "" {
		return netip.Addr{}, false
	}

	if strings.HasPrefix(raw, "/") {
		return parseMultiaddr(raw)
	}

	if strings.Contains(raw, "/") {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Addr{}, false
		}
		return p.Addr(), true
	}

	ip, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip, true
}

// parseMultiaddr extracts the IP of a multiaddr such as
// /ip4/1.2.3.4/tcp/4001 or /ip6zone/eth0/ip6/fe80::1/tcp/1
func parseMultiaddr(raw string) (netip.Addr, bool) {
	m, err := ma.NewMultiaddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}

	ip, err := manet.ToIP(m)
	if err != nil {
		return netip.Addr{}, false
	}

	a, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}
