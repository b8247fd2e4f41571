// Package bitmap tracks sets of row positions. It is used by the merger to
// count matched rows and to prove that every base row survived the joins.
package bitmap

import "github.com/RoaringBitmap/roaring"

// Rows is a set of non-negative row positions backed by a compressed
// roaring bitmap.
type Rows struct {
	bm *roaring.Bitmap
}

// New returns an empty set.
func New() *Rows {
	return &Rows{bm: roaring.New()}
}

// Add inserts pos. Negative positions are ignored.
func (r *Rows) Add(pos int) {
	if pos < 0 {
		return
	}
	r.bm.Add(uint32(pos))
}

// Has reports whether pos is in the set.
func (r *Rows) Has(pos int) bool {
	if pos < 0 {
		return false
	}
	return r.bm.Contains(uint32(pos))
}

// Len returns the number of positions in the set.
func (r *Rows) Len() int {
	return int(r.bm.GetCardinality())
}

// Missing returns the positions in [0, n) that are not in the set, in
// ascending order.
func (r *Rows) Missing(n int) []int {
	if n <= 0 {
		return nil
	}
	all := roaring.New()
	all.AddRange(0, uint64(n))
	all.AndNot(r.bm)

	out := make([]int, 0, all.GetCardinality())
	it := all.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
