package typeutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	set := NewSet(3, 1, 2)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contain(1, 2))
	assert.False(t, set.Contain(1, 4))

	set.Insert(2, 4)
	assert.Equal(t, 4, set.Len())
	set.Remove(1)
	assert.Equal(t, []int{2, 3, 4}, SortedCollect(set))
	assert.ElementsMatch(t, []int{2, 3, 4}, set.Collect())
}

func TestConcurrentSet(t *testing.T) {
	set := NewConcurrentSet[string]()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Insert("collidable") {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.True(t, set.Contain("collidable"))
	assert.False(t, set.Contain("collidable", "physics"))
	assert.Equal(t, []string{"collidable"}, set.Collect())
}
