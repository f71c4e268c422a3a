package heightmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBigScalerIdentityBelowLimit(t *testing.T) {
	s := NewBigScaler(500, []Range{{From: 100, To: 200}})
	assert.Equal(t, 50.0, s.ToDOM(50))
	assert.Equal(t, 500.0, s.ToDOM(500))
}

func TestBigScalerCompressesOutsideViewport(t *testing.T) {
	intrinsic := 10_000_000.0
	vp := Range{From: 4_000_000, To: 4_010_000}
	s := NewBigScaler(intrinsic, []Range{vp})
	assert.Less(t, s.scale, 1.0)

	// Inside the viewport, mapping stays exact (offset by the compressed
	// prefix before it).
	prefixDom := s.ToDOM(float64(vp.From))
	insideDom := s.ToDOM(float64(vp.From) + 100)
	assert.InDelta(t, 100.0, insideDom-prefixDom, 1e-6)

	// The whole document fits under the DOM limit.
	assert.LessOrEqual(t, s.ToDOM(intrinsic), MaxDOMHeight+1)
}

func TestBigScalerRoundTrip(t *testing.T) {
	intrinsic := 9_000_000.0
	vp := Range{From: 1_000_000, To: 1_005_000}
	s := NewBigScaler(intrinsic, []Range{vp})

	for _, px := range []float64{0, 500_000, float64(vp.From), float64(vp.From) + 2000, float64(vp.To), 8_000_000, intrinsic} {
		dom := s.ToDOM(px)
		back := s.FromDOM(dom)
		assert.InDelta(t, px, back, 1.0, "round-trip mismatch for %v", px)
	}
}
