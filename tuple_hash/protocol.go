package tuple_hash

import (
	"strings"

	"github.com/google/gopacket/layers"
)

// protocols maps lower case transport names to IANA protocol numbers.
// It is never modified after package initialization.
var protocols = map[string]layers.IPProtocol{
	"icmp":      layers.IPProtocolICMPv4,
	"icmpv4":    layers.IPProtocolICMPv4,
	"igmp":      layers.IPProtocolIGMP,
	"tcp":       layers.IPProtocolTCP,
	"udp":       layers.IPProtocolUDP,
	"gre":       layers.IPProtocolGRE,
	"esp":       layers.IPProtocolESP,
	"ah":        layers.IPProtocolAH,
	"icmpv6":    layers.IPProtocolICMPv6,
	"ipv6-icmp": layers.IPProtocolICMPv6,
	"icmp6":     layers.IPProtocolICMPv6,
	"sctp":      layers.IPProtocolSCTP,
	"udplite":   layers.IPProtocolUDPLite,
}

// LookupProtocol resolves a transport label to its protocol number.
// Names are matched case-insensitively. Raw protocol numbers are accepted
// both as numbers and as numeric strings.
func LookupProtocol(label any) (layers.IPProtocol, bool) {
	switch v := label.(type) {
	case layers.IPProtocol:
		return v, true
	case string:
		name := strings.ToLower(strings.TrimSpace(v))
		if proto, ok := protocols[name]; ok {
			return proto, true
		}
	}

	n, ok := parseUint(label, 0xff)
	if !ok {
		return 0, false
	}
	return layers.IPProtocol(n), true
}
