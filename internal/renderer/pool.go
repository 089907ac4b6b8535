package renderer

import "sync"

// Default sizes for buffer allocation
const (
	defaultGlyphPixels = 16 * 16 // most bitmap fonts fit a 16x16 cell

	// Scratch buffers larger than this are released instead of pooled so an
	// occasional huge font does not pin memory. 256x256 is the largest cell
	// the header can describe.
	maxRetainGlyphPixels = 256 * 256
)

// blitStatePool manages a pool of blitState objects to reduce allocations.
//
// Blits are typically issued in bursts (one per font per surface refresh),
// and each needs a scratch buffer of one glyph's decoded indices. Reusing
// the buffers keeps steady-state blits allocation free.
var blitStatePool = sync.Pool{
	New: func() interface{} {
		return &blitState{
			pixels: make([]uint8, 0, defaultGlyphPixels),
		}
	},
}

// acquireBlitState gets a blitState from the pool sized for n pixels per glyph.
func acquireBlitState(n int) *blitState {
	state, ok := blitStatePool.Get().(*blitState)
	if !ok {
		state = &blitState{}
	}
	if cap(state.pixels) < n {
		state.pixels = make([]uint8, n)
	} else {
		state.pixels = state.pixels[:n]
	}
	return state
}

// releaseBlitState returns a blitState to the pool, dropping oversized buffers.
func releaseBlitState(state *blitState) {
	if state == nil {
		return
	}
	if cap(state.pixels) > maxRetainGlyphPixels {
		state.pixels = nil
	}
	blitStatePool.Put(state)
}
