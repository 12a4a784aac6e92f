// Package partition assigns flow identifiers to named output partitions.
//
// The assignment uses the lookup table construction from the Maglev paper:
// https://static.googleusercontent.com/media/research.google.com/en//pubs/archive/44824.pdf
// so adding or removing a partition moves only a small share of flows.
// Since both directions of a flow share one identifier, every record of a
// flow lands in the same partition.
package partition

import (
	"encoding/binary"
	"hash/crc32"
	"sort"
	"sync"

	"community-id-go/tuple_hash"
)

var (
	SmallSize uint32 = 65537
	LargeSize uint32 = 655373
)

type member struct {
	id     int
	offset uint32
	skip   uint32
}

// Partitioner is safe for concurrent use.
type Partitioner struct {
	size uint32

	mtx     sync.RWMutex
	members map[string]member
	nextID  int
	lookup  []string
}

// New creates a Partitioner with a lookup table of the given size, which
// must be a prime. Use SmallSize or LargeSize for common sizes.
func New(size uint32, names ...string) *Partitioner {
	p := &Partitioner{
		size:    size,
		members: make(map[string]member),
	}
	p.Add(names...)
	return p
}

func (p *Partitioner) Size() uint32 {
	return p.size
}

// Names returns the partitions in the order they were added.
func (p *Partitioner) Names() []string {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.sortedNames()
}

// Add adds partitions. Names already present are ignored.
// Runs in O(M log M) time, M being the table size.
func (p *Partitioner) Add(names ...string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, name := range names {
		if _, ok := p.members[name]; ok {
			continue
		}
		p.members[name] = member{
			id:     p.nextID,
			offset: crc32.ChecksumIEEE([]byte(name+"offset")) % p.size,
			skip:   crc32.ChecksumIEEE([]byte(name+"skip"))%(p.size-1) + 1,
		}
		p.nextID++
	}
	p.populate()
}

// Remove removes partitions.
func (p *Partitioner) Remove(names ...string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, name := range names {
		delete(p.members, name)
	}
	p.populate()
}

// Pick returns the partition of the identifier, or "" without partitions.
func (p *Partitioner) Pick(id string) string {
	return p.PickKey(Key(id))
}

// PickKey returns the partition of a precomputed key.
func (p *Partitioner) PickKey(key uint64) string {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	if len(p.lookup) == 0 {
		return ""
	}
	return p.lookup[key%uint64(p.size)]
}

// Key derives a table key from an identifier: the leading 8 bytes of its
// digest. Strings that are not identifiers fall back to their CRC-32.
func Key(id string) uint64 {
	digest, err := tuple_hash.Digest(id)
	if err != nil {
		return uint64(crc32.ChecksumIEEE([]byte(id)))
	}
	return binary.BigEndian.Uint64(digest)
}

// populate rebuilds the lookup table. Assumes mtx is write-locked.
func (p *Partitioner) populate() {
	if len(p.members) == 0 {
		p.lookup = nil
		return
	}

	names := p.sortedNames()
	lookup := make([]string, p.size)
	next := make([]uint32, len(names))
	taken := make([]bool, p.size)

	var filled uint32
	for {
		for i, name := range names {
			candidate := p.permutationAt(name, next[i])
			for taken[candidate] {
				next[i]++
				candidate = p.permutationAt(name, next[i])
			}

			taken[candidate] = true
			lookup[candidate] = name
			next[i]++

			filled++
			if filled == p.size {
				p.lookup = lookup
				return
			}
		}
	}
}

// permutationAt returns the j-th preferred slot of the partition.
func (p *Partitioner) permutationAt(name string, j uint32) uint32 {
	m := p.members[name]
	return uint32((uint64(m.offset) + uint64(j)*uint64(m.skip)) % uint64(p.size))
}

// sortedNames returns partition names ordered by id. Assumes mtx is held.
func (p *Partitioner) sortedNames() []string {
	names := make([]string, 0, len(p.members))
	for name := range p.members {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.members[names[i]].id < p.members[names[j]].id
	})
	return names
}
