package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"ipv4", "192.168.10.7", "192.168.10", true},
		{"ipv4 cidr", "10.0.3.4/32", "10.0.3", true},
		{"ipv4 multiaddr", "/ip4/85.1.2.3/tcp/4001", "85.1.2", true},
		{"ipv6", "2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3", true},
		{"ipv6 short", "2001:db8::1", "2001:db8:", true},
		{"ipv6 multiaddr", "/ip6/2a01:4f8:1c1c:aa::1/udp/4001/quic", "2a01:4f8:1c1c", true},
		{"ipv6 zoned multiaddr", "/ip6zone/eth0/ip6/fe80::1/tcp/1", "fe80::1", true},
		{"ipv4 quic-v1 multiaddr", "/ip4/147.75.83.83/udp/4001/quic-v1", "147.75.83", true},
		{"whitespace", "  8.8.8.8 ", "8.8.8", true},
		{"empty", "", "", false},
		{"garbage", "not-an-ip", "", false},
		{"dns multiaddr", "/dns4/example.com/tcp/443", "", false},
		{"unknown protocol", "/foo/1.2.3.4", "", false},
		{"bad ip4 component", "/ip4/300.1.2.3/tcp/1", "", false},
		{"bad cidr", "10.0.0.1/99", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Prefix(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
