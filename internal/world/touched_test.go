package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"raycaster/internal/geometry"
)

func TestTouchedSet(t *testing.T) {
	ts := NewTouchedSet(3, 2)
	ts.Mark(CellCoord{X: 1, Y: 1})
	ts.Mark(CellCoord{X: 1, Y: 1})
	ts.Mark(CellCoord{X: 3, Y: 0})
	ts.Mark(CellCoord{X: -1, Y: 0})

	assert.True(t, ts.IsTouched(CellCoord{X: 1, Y: 1}))
	assert.False(t, ts.IsTouched(CellCoord{X: 0, Y: 1}))
	assert.False(t, ts.IsTouched(CellCoord{X: 3, Y: 0}))
	assert.Equal(t, 1, ts.Count())

	m, _ := NewEmptyMap(3, 2, 64)
	assert.True(t, ts.Fits(m))
	assert.False(t, ts.Fits(NewBaseMap()))
	assert.Equal(t, 0, NewTouchedSet(-1, 4).Count())
}

func TestTouchedSet_ConcurrentMarks(t *testing.T) {
	ts := NewTouchedSet(16, 16)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					ts.Mark(CellCoord{X: x, Y: y})
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 256, ts.Count())
}

func TestTraverse_Diagonal(t *testing.T) {
	m, _ := NewEmptyMap(4, 4, 10)
	var visited []CellCoord
	m.Traverse(geometry.V(5, 5), geometry.V(25, 15), func(c CellCoord) {
		visited = append(visited, c)
	})
	assert.Equal(t, []CellCoord{{0, 0}, {1, 0}, {1, 1}, {2, 1}}, visited)
}
