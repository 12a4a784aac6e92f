package tuple_hash

import (
	"encoding/json"
	"math"
	"net"
	"strconv"
	"strings"
)

// ParseAddress parses a textual IPv4 or IPv6 address.
func ParseAddress(v any) (net.IP, bool) {
	switch addr := v.(type) {
	case net.IP:
		if compactIP(addr) == nil {
			return nil, false
		}
		return compactIP(addr), true
	case string:
		ip := net.ParseIP(strings.TrimSpace(addr))
		if ip == nil {
			return nil, false
		}
		return compactIP(ip), true
	}
	return nil, false
}

// ParsePort resolves a port (or ICMP type/code) given either as a number or
// as a decimal string. Values outside 0..65535, fractions and anything non
// numeric are rejected rather than truncated.
func ParsePort(v any) (uint16, bool) {
	n, ok := parseUint(v, math.MaxUint16)
	return uint16(n), ok
}

// parseUint converts v to an unsigned integer no larger than limit.
func parseUint(v any, limit uint64) (uint64, bool) {
	var n uint64
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case int8:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case int16:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case int32:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case int64:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case float32:
		return parseFloat(float64(x), limit)
	case float64:
		return parseFloat(x, limit)
	case json.Number:
		return parseString(x.String(), limit)
	case string:
		return parseString(x, limit)
	default:
		return 0, false
	}
	if n > limit {
		return 0, false
	}
	return n, true
}

func parseFloat(f float64, limit uint64) (uint64, bool) {
	if f < 0 || f > float64(limit) || f != math.Trunc(f) {
		return 0, false
	}
	return uint64(f), true
}

func parseString(s string, limit uint64) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > limit {
		return 0, false
	}
	return n, true
}
