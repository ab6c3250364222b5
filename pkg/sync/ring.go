package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// stripeRing is a consistent hash ring over stripe indices. Each stripe owns
// pointsPerStripe points, and a key maps to the stripe owning the first point
// at or after the key's hash, wrapping around to the lowest point.
type stripeRing struct {
	points *treemap.Map

	// Cached owner of the lowest point, since treemap.Map.Min is O(log n)
	wrapStripe int
}

func newStripeRing(stripes, pointsPerStripe uint) *stripeRing {
	points := treemap.NewWith(utils.Int64Comparator)

	seed := make([]byte, 8)
	for stripe := uint32(0); stripe < uint32(stripes); stripe++ {
		binary.LittleEndian.PutUint32(seed[:4], stripe)
		for point := uint32(0); point < uint32(pointsPerStripe); point++ {
			binary.LittleEndian.PutUint32(seed[4:], point)
			points.Put(int64(murmur3.Sum64(seed)), int(stripe))
		}
	}

	r := &stripeRing{points: points}
	if _, owner := points.Min(); owner != nil {
		r.wrapStripe = owner.(int)
	}
	return r
}

func (r *stripeRing) stripe(key []byte) int {
	_, owner := r.points.Ceiling(int64(murmur3.Sum64(key)))
	if owner == nil {
		return r.wrapStripe
	}
	return owner.(int)
}
