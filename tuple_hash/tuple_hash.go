// Package tuple_hash
// The 5-tuple of a packet refers to the source IP, source port,
// destination IP, destination port and IP protocol number.
//
// This package computes a direction-independent identifier of a 5-tuple in
// the Community ID v1 format, so that both directions of a flow, observed by
// different sensors, map to the same string.
package tuple_hash

import (
	"bytes"
	"encoding/binary"
	"net"

	"github.com/google/gopacket/layers"
)

// FlowTuple is a resolved 5-tuple. For ICMP and ICMPv6 SrcPort and DstPort
// carry the message type and code.
type FlowTuple struct {
	SrcIP    net.IP
	SrcPort  uint16
	DstIP    net.IP
	DstPort  uint16
	Protocol layers.IPProtocol
}

// NewFlowTuple resolves loosely typed field values into a FlowTuple.
// Addresses must be textual IPs (or net.IP), ports anything ParsePort accepts,
// and transport anything LookupProtocol accepts. ok is false if any of the
// values cannot be resolved.
func NewFlowTuple(srcIP, srcPort, dstIP, dstPort, transport any) (tuple FlowTuple, ok bool) {
	if tuple.SrcIP, ok = ParseAddress(srcIP); !ok {
		return FlowTuple{}, false
	}
	if tuple.SrcPort, ok = ParsePort(srcPort); !ok {
		return FlowTuple{}, false
	}
	if tuple.DstIP, ok = ParseAddress(dstIP); !ok {
		return FlowTuple{}, false
	}
	if tuple.DstPort, ok = ParsePort(dstPort); !ok {
		return FlowTuple{}, false
	}
	if tuple.Protocol, ok = LookupProtocol(transport); !ok {
		return FlowTuple{}, false
	}
	return tuple, true
}

// Normalize resolves the given values and returns the canonical byte layout
// of the flow. ok is false if any value cannot be resolved.
func Normalize(srcIP, srcPort, dstIP, dstPort, transport any, seed uint16) (buf []byte, ok bool) {
	tuple, ok := NewFlowTuple(srcIP, srcPort, dstIP, dstPort, transport)
	if !ok {
		return nil, false
	}
	return tuple.Normalize(seed), true
}

// Hash returns the identifier of the flow.
func Hash(srcIP net.IP, srcPort uint16, dstIP net.IP, dstPort uint16, proto layers.IPProtocol, seed uint16) string {
	return FlowTuple{
		SrcIP:    srcIP,
		SrcPort:  srcPort,
		DstIP:    dstIP,
		DstPort:  dstPort,
		Protocol: proto,
	}.Hash(seed)
}

// Hash returns the identifier of the flow.
func (t FlowTuple) Hash(seed uint16) string {
	return Encode(t.Normalize(seed))
}

// Reverse returns the tuple as seen from the other direction.
func (t FlowTuple) Reverse() FlowTuple {
	return FlowTuple{
		SrcIP:    t.DstIP,
		SrcPort:  t.DstPort,
		DstIP:    t.SrcIP,
		DstPort:  t.SrcPort,
		Protocol: t.Protocol,
	}
}

// Normalize returns
//
//	seed (2) | low IP | high IP | protocol (1) | 0 (1) | low port (2) | high port (2)
//
// with all integers big-endian. The returned slice is freshly allocated.
func (t FlowTuple) Normalize(seed uint16) []byte {
	lowIP, lowPort, highIP, highPort := t.ordered()

	buf := make([]byte, 0, 2+len(lowIP)+len(highIP)+2+4)
	buf = binary.BigEndian.AppendUint16(buf, seed)
	buf = append(buf, lowIP...)
	buf = append(buf, highIP...)
	buf = append(buf, uint8(t.Protocol), 0)
	buf = binary.BigEndian.AppendUint16(buf, lowPort)
	buf = binary.BigEndian.AppendUint16(buf, highPort)
	return buf
}

// ordered returns the endpoints as (low, high).
func (t FlowTuple) ordered() (lowIP net.IP, lowPort uint16, highIP net.IP, highPort uint16) {
	srcIP, dstIP := compactIP(t.SrcIP), compactIP(t.DstIP)
	srcPort, dstPort := t.SrcPort, t.DstPort

	if isICMP(t.Protocol) {
		counterpart, paired := icmpCounterpart(t.Protocol, srcPort)
		if !paired {
			// No request/reply relation: order by address only, type and
			// code keep their positions.
			if bytes.Compare(srcIP, dstIP) > 0 {
				return dstIP, srcPort, srcIP, dstPort
			}
			return srcIP, srcPort, dstIP, dstPort
		}
		dstPort = counterpart
	}

	if endpointLess(dstIP, dstPort, srcIP, srcPort) {
		return dstIP, dstPort, srcIP, srcPort
	}
	return srcIP, srcPort, dstIP, dstPort
}

func endpointLess(aIP net.IP, aPort uint16, bIP net.IP, bPort uint16) bool {
	switch bytes.Compare(aIP, bIP) {
	case -1:
		return true
	case 1:
		return false
	}
	return aPort < bPort
}

// compactIP returns the 4 byte form of IPv4 addresses and the 16 byte form
// of everything else.
func compactIP(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip.To16()
}
