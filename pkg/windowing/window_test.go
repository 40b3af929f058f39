package windowing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viable-systems/vsm-pattern-engine/pkg/windowing"
)

func TestSlideDropsIncompleteFinalWindow(t *testing.T) {
	data := make([]float64, 25)
	for i := range data {
		data[i] = float64(i)
	}
	windows := windowing.Slide(data, 10, 10)
	// starts at 0, 10 -> [0,10) and [10,20); 20+10=30 > 25 so dropped.
	assert.Len(t, windows, 2)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, 10, windows[1].Start)
}

func TestSlideTooShortReturnsNil(t *testing.T) {
	assert.Nil(t, windowing.Slide([]float64{1, 2, 3}, 10, 10))
}

func TestStreamBufferEmitsAndDrops(t *testing.T) {
	sb := windowing.NewStreamBuffer(5, 2)
	var emitted []windowing.Window

	emitted = append(emitted, sb.Push(1, 2, 3)...)
	assert.Empty(t, emitted)
	assert.Equal(t, 3, sb.Len())

	emitted = append(emitted, sb.Push(4, 5)...)
	assert.Len(t, emitted, 1)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, emitted[0].Data)
	assert.Equal(t, 3, sb.Len()) // dropped 2 of 5
}
