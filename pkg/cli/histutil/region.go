// Package histutil implements command history packed into a fixed region of
// memory.
//
// Entries are stored newest first as records of a little-endian 16-bit
// record size, the text, and a NUL byte. Adding an entry shifts the rest of
// the region toward its end, so the oldest entries fall off once the region is
// full.
package histutil

import (
	"encoding/binary"
	"errors"
	"math"

	"src.bootcon.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[histutil] ")

// ErrSizeMismatch is returned by Restore when the snapshot does not fit the
// region.
var ErrSizeMismatch = errors.New("history snapshot size mismatch")

const (
	headerSize = 2
	// Record overhead: size header plus NUL terminator.
	overhead = headerSize + 1
	maxCount = math.MaxInt32
)

// Region is a history store in a fixed byte region. The zero value is an
// empty region that accepts nothing.
type Region struct {
	buf []byte
	n   int
}

// NewRegion allocates a region that holds entries lines of up to maxLine
// bytes each.
func NewRegion(maxLine, entries int) *Region {
	return &Region{buf: make([]byte, maxLine*entries)}
}

// Len returns the number of entries.
func (r *Region) Len() int { return r.n }

// Cap returns the size of the region in bytes.
func (r *Region) Cap() int { return len(r.buf) }

// recordSize returns the size of the record at p, or false if the record is
// not fully contained in the region.
func (r *Region) recordSize(p int) (int, bool) {
	if p+headerSize > len(r.buf) {
		return 0, false
	}
	size := int(binary.LittleEndian.Uint16(r.buf[p:]))
	if size < overhead || p+size > len(r.buf) {
		return 0, false
	}
	return size, true
}

// walk returns the offset of entry i. If a record on the way is broken it
// returns the index of that record and false.
func (r *Region) walk(i int) (p, j int, ok bool) {
	for j = 0; j < i; j++ {
		size, ok := r.recordSize(p)
		if !ok {
			return p, j, false
		}
		p += size
	}
	return p, i, true
}

// Get returns entry i, where 0 is the most recent entry. If the entry has
// been pushed out of the region, the entry count is cut back to the number of
// entries still present.
func (r *Region) Get(i int) (string, bool) {
	if i < 0 || i >= r.n {
		return "", false
	}
	p, j, ok := r.walk(i)
	if ok {
		var size int
		if size, ok = r.recordSize(p); ok {
			return string(r.buf[p+headerSize : p+size-1]), true
		}
	}
	logger.Printf("entry %d overruns the region, keeping %d entries", j, j)
	r.n = j
	return "", false
}

// Add inserts text so that it becomes entry i, shifting older entries back.
// It reports whether the entry was stored; an entry that does not fit in the
// region is dropped and the region is unchanged.
func (r *Region) Add(text string, i int) bool {
	if i < 0 || i > r.n {
		return false
	}
	p, _, ok := r.walk(i)
	if !ok {
		return false
	}
	size := len(text) + overhead
	if size > math.MaxUint16 || p+size > len(r.buf) {
		logger.Printf("dropping %d-byte entry", len(text))
		return false
	}
	copy(r.buf[p+size:], r.buf[p:len(r.buf)-size])
	binary.LittleEndian.PutUint16(r.buf[p:], uint16(size))
	copy(r.buf[p+headerSize:], text)
	r.buf[p+size-1] = 0
	if r.n < maxCount {
		r.n++
	}
	return true
}

// Entries returns all entries that are still present, most recent first.
func (r *Region) Entries() []string {
	var entries []string
	for i := 0; i < r.n; i++ {
		s, ok := r.Get(i)
		if !ok {
			break
		}
		entries = append(entries, s)
	}
	return entries
}

// Snapshot returns a copy of the raw region and the entry count.
func (r *Region) Snapshot() ([]byte, int) {
	return append([]byte(nil), r.buf...), r.n
}

// Restore replaces the content of the region with a snapshot. Entries that
// are not intact in the snapshot are discarded.
func (r *Region) Restore(data []byte, n int) error {
	if len(data) != len(r.buf) {
		return ErrSizeMismatch
	}
	if n < 0 {
		n = 0
	}
	copy(r.buf, data)
	r.n = n
	if n > 0 {
		r.Get(n - 1)
	}
	return nil
}
