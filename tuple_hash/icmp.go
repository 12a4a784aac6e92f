package tuple_hash

import "github.com/google/gopacket/layers"

// ICMP messages that come in request/reply pairs. The type of one side is
// used in place of the missing port of the other, so that a request and its
// reply produce the same identifier.
var (
	icmpv4Pairs = map[uint16]uint16{
		layers.ICMPv4TypeEchoRequest:         layers.ICMPv4TypeEchoReply,
		layers.ICMPv4TypeEchoReply:           layers.ICMPv4TypeEchoRequest,
		layers.ICMPv4TypeRouterSolicitation:  layers.ICMPv4TypeRouterAdvertisement,
		layers.ICMPv4TypeRouterAdvertisement: layers.ICMPv4TypeRouterSolicitation,
		layers.ICMPv4TypeTimestampRequest:    layers.ICMPv4TypeTimestampReply,
		layers.ICMPv4TypeTimestampReply:      layers.ICMPv4TypeTimestampRequest,
		layers.ICMPv4TypeInfoRequest:         layers.ICMPv4TypeInfoReply,
		layers.ICMPv4TypeInfoReply:           layers.ICMPv4TypeInfoRequest,
		layers.ICMPv4TypeAddressMaskRequest:  layers.ICMPv4TypeAddressMaskReply,
		layers.ICMPv4TypeAddressMaskReply:    layers.ICMPv4TypeAddressMaskRequest,
	}

	icmpv6Pairs = map[uint16]uint16{
		layers.ICMPv6TypeEchoRequest:           layers.ICMPv6TypeEchoReply,
		layers.ICMPv6TypeEchoReply:             layers.ICMPv6TypeEchoRequest,
		icmpv6MLDQuery:                         icmpv6MLDReport,
		icmpv6MLDReport:                        icmpv6MLDQuery,
		layers.ICMPv6TypeRouterSolicitation:    layers.ICMPv6TypeRouterAdvertisement,
		layers.ICMPv6TypeRouterAdvertisement:   layers.ICMPv6TypeRouterSolicitation,
		layers.ICMPv6TypeNeighborSolicitation:  layers.ICMPv6TypeNeighborAdvertisement,
		layers.ICMPv6TypeNeighborAdvertisement: layers.ICMPv6TypeNeighborSolicitation,
		icmpv6NodeInfoQuery:                    icmpv6NodeInfoReply,
		icmpv6NodeInfoReply:                    icmpv6NodeInfoQuery,
		icmpv6HomeAgentRequest:                 icmpv6HomeAgentReply,
		icmpv6HomeAgentReply:                   icmpv6HomeAgentRequest,
	}
)

// ICMPv6 types without a gopacket constant.
const (
	icmpv6MLDQuery         = 130
	icmpv6MLDReport        = 131
	icmpv6NodeInfoQuery    = 139 // RFC 4620
	icmpv6NodeInfoReply    = 140
	icmpv6HomeAgentRequest = 144 // RFC 6275
	icmpv6HomeAgentReply   = 145
)

func isICMP(proto layers.IPProtocol) bool {
	return proto == layers.IPProtocolICMPv4 || proto == layers.IPProtocolICMPv6
}

// icmpCounterpart returns the type answering (or answered by) typ.
func icmpCounterpart(proto layers.IPProtocol, typ uint16) (uint16, bool) {
	var pairs map[uint16]uint16
	switch proto {
	case layers.IPProtocolICMPv4:
		pairs = icmpv4Pairs
	case layers.IPProtocolICMPv6:
		pairs = icmpv6Pairs
	default:
		return 0, false
	}
	counterpart, ok := pairs[typ]
	return counterpart, ok
}
