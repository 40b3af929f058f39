// Package windowing provides deterministic sliding-window views over a
// numeric sequence, shared by the temporal detector's batch and
// streaming modes.
package windowing

// Window is one fixed-size slice of a sequence along with its absolute
// start index in the original sequence.
type Window struct {
	Start int
	Data  []float64
}

// End returns the (exclusive) absolute end index of the window.
func (w Window) End() int {
	return w.Start + len(w.Data)
}

// Slide produces fixed-size, non-overlapping-or-overlapping windows of
// size windowSize starting every slideInterval samples. An incomplete
// final window (fewer than windowSize remaining samples) is discarded.
func Slide(data []float64, windowSize, slideInterval int) []Window {
	if windowSize <= 0 || slideInterval <= 0 || len(data) < windowSize {
		return nil
	}
	var windows []Window
	for start := 0; start+windowSize <= len(data); start += slideInterval {
		buf := make([]float64, windowSize)
		copy(buf, data[start:start+windowSize])
		windows = append(windows, Window{Start: start, Data: buf})
	}
	return windows
}

// StreamBuffer accumulates samples pushed one (or a few) at a time and
// emits a window once it holds windowSize elements, then drops the first
// slideInterval elements -- the streaming-mode analogue of Slide.
type StreamBuffer struct {
	windowSize    int
	slideInterval int
	buf           []float64
	offset        int // absolute index of buf[0] among all pushed samples
}

// NewStreamBuffer constructs a StreamBuffer for the given window size and
// slide interval.
func NewStreamBuffer(windowSize, slideInterval int) *StreamBuffer {
	return &StreamBuffer{windowSize: windowSize, slideInterval: slideInterval}
}

// Push appends samples to the buffer and returns every window that became
// ready as a result (normally zero or one, but a caller pushing a large
// batch at once may trigger several).
func (s *StreamBuffer) Push(samples ...float64) []Window {
	s.buf = append(s.buf, samples...)
	var windows []Window
	for len(s.buf) >= s.windowSize {
		w := make([]float64, s.windowSize)
		copy(w, s.buf[:s.windowSize])
		windows = append(windows, Window{Start: s.offset, Data: w})
		drop := s.slideInterval
		if drop > len(s.buf) {
			drop = len(s.buf)
		}
		s.buf = s.buf[drop:]
		s.offset += drop
	}
	return windows
}

// Len reports how many samples are currently buffered.
func (s *StreamBuffer) Len() int {
	return len(s.buf)
}
