package tuple_hash

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		srcIP    string
		srcPort  uint16
		dstIP    string
		dstPort  uint16
		proto    layers.IPProtocol
		seed     uint16
		expected string
	}{
		{
			name:     "UDP DNS query",
			srcIP:    "192.168.1.52",
			srcPort:  54585,
			dstIP:    "8.8.8.8",
			dstPort:  53,
			proto:    layers.IPProtocolUDP,
			expected: "1:d/FP5EW3wiY1vCndhwleRRKHowQ=",
		},
		{
			name:     "UDP DNS query, other resolver",
			srcIP:    "10.1.2.3",
			srcPort:  63521,
			dstIP:    "8.8.8.8",
			dstPort:  53,
			proto:    layers.IPProtocolUDP,
			expected: "1:R7iR6vkxw+jaz3wjDfWMWooBdfc=",
		},
		{
			name:     "TCP HTTP",
			srcIP:    "128.232.110.120",
			srcPort:  34855,
			dstIP:    "66.35.250.204",
			dstPort:  80,
			proto:    layers.IPProtocolTCP,
			expected: "1:LQU9qZlK+B5F3KDmev6m5PMibrg=",
		},
		{
			name:     "TCP HTTP with seed",
			srcIP:    "128.232.110.120",
			srcPort:  34855,
			dstIP:    "66.35.250.204",
			dstPort:  80,
			proto:    layers.IPProtocolTCP,
			seed:     1,
			expected: "1:3V71V58M3Ksw/yuFALMcW0LAHvc=",
		},
		{
			name:     "ICMP echo request",
			srcIP:    "192.168.0.89",
			srcPort:  8,
			dstIP:    "192.168.0.1",
			dstPort:  0,
			proto:    layers.IPProtocolICMPv4,
			expected: "1:X0snYXpgwiv9TZtqg64sgzUn6Dk=",
		},
		{
			name:     "ICMP echo reply",
			srcIP:    "192.168.0.1",
			srcPort:  0,
			dstIP:    "192.168.0.89",
			dstPort:  0,
			proto:    layers.IPProtocolICMPv4,
			expected: "1:X0snYXpgwiv9TZtqg64sgzUn6Dk=",
		},
		{
			name:     "ICMPv6 neighbor solicitation",
			srcIP:    "fe80::200:86ff:fe05:80da",
			srcPort:  135,
			dstIP:    "fe80::260:97ff:fe07:69ea",
			dstPort:  0,
			proto:    layers.IPProtocolICMPv6,
			expected: "1:dGHyGvjMfljg6Bppwm3bg0LO8TY=",
		},
		{
			name:     "ICMPv6 neighbor advertisement",
			srcIP:    "fe80::260:97ff:fe07:69ea",
			srcPort:  136,
			dstIP:    "fe80::200:86ff:fe05:80da",
			dstPort:  0,
			proto:    layers.IPProtocolICMPv6,
			expected: "1:dGHyGvjMfljg6Bppwm3bg0LO8TY=",
		},
		{
			name:     "ICMP destination unreachable",
			srcIP:    "10.0.0.2",
			srcPort:  3,
			dstIP:    "10.0.0.1",
			dstPort:  1,
			proto:    layers.IPProtocolICMPv4,
			expected: "1:gkoOC4ouXvyYq0Ek/WqwbLoqcxM=",
		},
		{
			name:     "TCP IPv6",
			srcIP:    "2001:db8::2",
			srcPort:  51000,
			dstIP:    "2001:db8::1",
			dstPort:  443,
			proto:    layers.IPProtocolTCP,
			expected: "1:2TiKiiiSIuDma9IxOEOpx4wCXWM=",
		},
		{
			name:     "SCTP mixed address families",
			srcIP:    "10.0.0.5",
			srcPort:  5000,
			dstIP:    "::1",
			dstPort:  5000,
			proto:    layers.IPProtocolSCTP,
			expected: "1:27n0Fy8e/QDv1fo8TZp90lLY59k=",
		},
		{
			name:     "identical endpoints",
			srcIP:    "10.0.0.1",
			srcPort:  1234,
			dstIP:    "10.0.0.1",
			dstPort:  1234,
			proto:    layers.IPProtocolTCP,
			expected: "1:eHDfD6t48C9j8WFd2UFB5q4KC6I=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Hash(net.ParseIP(tt.srcIP), tt.srcPort, net.ParseIP(tt.dstIP), tt.dstPort, tt.proto, tt.seed)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestHashDirectionIndependent(t *testing.T) {
	tuples := []FlowTuple{
		{SrcIP: net.ParseIP("192.168.1.52"), SrcPort: 54585, DstIP: net.ParseIP("8.8.8.8"), DstPort: 53, Protocol: layers.IPProtocolUDP},
		{SrcIP: net.ParseIP("10.0.0.1"), SrcPort: 80, DstIP: net.ParseIP("10.0.0.1"), DstPort: 8080, Protocol: layers.IPProtocolTCP},
		{SrcIP: net.ParseIP("2001:db8::1"), SrcPort: 1, DstIP: net.ParseIP("192.0.2.1"), DstPort: 2, Protocol: layers.IPProtocolSCTP},
		{SrcIP: net.ParseIP("10.0.0.1"), SrcPort: 13, DstIP: net.ParseIP("10.0.0.2"), DstPort: 0, Protocol: layers.IPProtocolICMPv4},
		{SrcIP: net.ParseIP("10.0.0.1"), SrcPort: 11, DstIP: net.ParseIP("10.0.0.2"), DstPort: 0, Protocol: layers.IPProtocolICMPv4},
		{SrcIP: net.ParseIP("fe80::1"), SrcPort: 128, DstIP: net.ParseIP("fe80::2"), DstPort: 0, Protocol: layers.IPProtocolICMPv6},
		{SrcIP: net.ParseIP("10.0.0.9"), SrcPort: 0, DstIP: net.ParseIP("10.0.0.3"), DstPort: 0, Protocol: layers.IPProtocolGRE},
	}

	for _, tuple := range tuples {
		for _, seed := range []uint16{0, 1, 65535} {
			assert.Equal(t, tuple.Hash(seed), tuple.Reverse().Hash(seed), "tuple %+v seed %d", tuple, seed)
		}
	}
}

func TestHashSeedSensitive(t *testing.T) {
	tuple := FlowTuple{SrcIP: net.ParseIP("192.168.1.52"), SrcPort: 54585, DstIP: net.ParseIP("8.8.8.8"), DstPort: 53, Protocol: layers.IPProtocolUDP}

	seen := make(map[string]uint16)
	for _, seed := range []uint16{0, 1, 2, 42, 1000, 65535} {
		id := tuple.Hash(seed)
		prev, dup := seen[id]
		assert.False(t, dup, "seed %d collides with seed %d", seed, prev)
		seen[id] = seed
	}
}

func TestNormalize(t *testing.T) {
	t.Run("ByteLayout", func(t *testing.T) {
		buf, ok := Normalize("192.168.1.52", 54585, "8.8.8.8", 53, "udp", 0x0102)
		require.True(t, ok)
		assert.Equal(t, []byte{
			0x01, 0x02, // seed
			8, 8, 8, 8, // low address
			192, 168, 1, 52, // high address
			17, 0, // protocol, padding
			0x00, 0x35, // low port
			0xd5, 0x39, // high port
		}, buf)
	})
	t.Run("ICMPWithoutPairKeepsTypeAndCode", func(t *testing.T) {
		buf, ok := Normalize("10.0.0.2", 3, "10.0.0.1", 1, "icmp", 0)
		require.True(t, ok)
		assert.Equal(t, []byte{0, 0, 10, 0, 0, 1, 10, 0, 0, 2, 1, 0, 0, 3, 0, 1}, buf)
	})
	t.Run("ICMPPairUsesCounterpartType", func(t *testing.T) {
		buf, ok := Normalize("10.0.0.1", 8, "10.0.0.2", 0, "icmp", 0)
		require.True(t, ok)
		assert.Equal(t, []byte{0, 0, 10, 0, 0, 1, 10, 0, 0, 2, 1, 0, 0, 8, 0, 0}, buf)
	})
	t.Run("FreshBufferPerCall", func(t *testing.T) {
		a, _ := Normalize("10.0.0.1", 1, "10.0.0.2", 2, "tcp", 0)
		b, _ := Normalize("10.0.0.1", 1, "10.0.0.2", 2, "tcp", 0)
		assert.Equal(t, a, b)
		a[0] = 0xff
		assert.NotEqual(t, a, b)
	})
	t.Run("PortRepresentationInvariance", func(t *testing.T) {
		fromText, ok := Normalize("192.168.1.52", "54585", "8.8.8.8", "53", "UDP", 0)
		require.True(t, ok)
		fromInt, ok := Normalize("192.168.1.52", 54585, "8.8.8.8", 53, "UDP", 0)
		require.True(t, ok)
		fromFloat, ok := Normalize("192.168.1.52", float64(54585), "8.8.8.8", float64(53), "UDP", 0)
		require.True(t, ok)
		assert.Equal(t, fromInt, fromText)
		assert.Equal(t, fromInt, fromFloat)
	})
	t.Run("UnresolvableValues", func(t *testing.T) {
		inputs := [][5]any{
			{nil, 1, "10.0.0.2", 2, "tcp"},
			{"10.0.0.1", nil, "10.0.0.2", 2, "tcp"},
			{"10.0.0.1", 1, "not-an-ip", 2, "tcp"},
			{"10.0.0.1", 1, "10.0.0.2", "http", "tcp"},
			{"10.0.0.1", 1, "10.0.0.2", 70000, "tcp"},
			{"10.0.0.1", -1, "10.0.0.2", 2, "tcp"},
			{"10.0.0.1", 1.5, "10.0.0.2", 2, "tcp"},
			{"10.0.0.1", 1, "10.0.0.2", 2, "quic"},
			{"10.0.0.1", 1, "10.0.0.2", 2, 256},
		}
		for _, in := range inputs {
			buf, ok := Normalize(in[0], in[1], in[2], in[3], in[4], 0)
			assert.False(t, ok, "input %v", in)
			assert.Nil(t, buf)
		}
	})
}

func TestEncode(t *testing.T) {
	id := Encode([]byte{})
	assert.Equal(t, "1:2jmj7l5rSw0yVb/vlWAYkK/YBwk=", id)

	digest, err := Digest(id)
	require.NoError(t, err)
	assert.Len(t, digest, 20)

	_, err = Digest("2:2jmj7l5rSw0yVb/vlWAYkK/YBwk=")
	assert.Error(t, err)
	_, err = Digest("1:not base64")
	assert.Error(t, err)
	_, err = Digest("1:AAAA")
	assert.Error(t, err)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in       string
		expected uint16
		wantErr  bool
	}{
		{in: "", expected: 0},
		{in: "0", expected: 0},
		{in: " 7 ", expected: 7},
		{in: "65535", expected: 65535},
		{in: "65536", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			seed, err := ParseSeed(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeed)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, seed)
		})
	}
}
