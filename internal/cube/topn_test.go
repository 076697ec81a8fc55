package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampTopN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MinTopN, ClampTopN(0))
	assert.Equal(t, MinTopN, ClampTopN(-5))
	assert.Equal(t, MaxTopN, ClampTopN(100))
	assert.Equal(t, 10, ClampTopN(10))
}

func TestNormalizeSortMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SortByTotals, NormalizeSortMode(""))
	assert.Equal(t, SortByTotals, NormalizeSortMode("bogus"))
	assert.Equal(t, SortByKeyAsc, NormalizeSortMode(SortByKeyAsc))
	assert.Equal(t, SortByTotals, NormalizeSortMode(SortByTotals))
}

func TestTopNReducer_TotalsDescending(t *testing.T) {
	t.Parallel()

	reducer := NewTopNReducer(DefaultTopN, SortByTotals)

	members := reducer.Select(map[string]float64{"A": 5, "B": 50, "C": 20})

	assert.Equal(t, []string{"B", "C", "A"}, members)
}

func TestTopNReducer_TotalsTieBreaksByKey(t *testing.T) {
	t.Parallel()

	reducer := NewTopNReducer(2, SortByTotals)

	// A and B tie at 10; C is below the cut. The selection must be {A, B}
	// regardless of map iteration order.
	for i := 0; i < 20; i++ {
		members := reducer.Select(map[string]float64{"A": 10, "B": 10, "C": 5})

		assert.Equal(t, []string{"A", "B"}, members)
	}
}

func TestTopNReducer_KeyAscOrdersNumericSubstringsNaturally(t *testing.T) {
	t.Parallel()

	reducer := NewTopNReducer(DefaultTopN, SortByKeyAsc)

	members := reducer.Select(map[string]float64{
		"Item 10": 1,
		"Item 2":  2,
		"Item 1":  3,
	})

	assert.Equal(t, []string{"Item 1", "Item 2", "Item 10"}, members)
}

func TestTopNReducer_LimitTruncates(t *testing.T) {
	t.Parallel()

	reducer := NewTopNReducer(2, SortByKeyAsc)

	members := reducer.Select(map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4})

	assert.Equal(t, []string{"a", "b"}, members)
}

func TestTopNReducer_ClampsConstruction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MinTopN, NewTopNReducer(-1, SortByTotals).Limit())
	assert.Equal(t, MaxTopN, NewTopNReducer(1000, SortByTotals).Limit())
	assert.Equal(t, SortByTotals, NewTopNReducer(1, "nonsense").Mode())
}

func TestTopNReducer_EmptyTotals(t *testing.T) {
	t.Parallel()

	reducer := NewTopNReducer(DefaultTopN, SortByTotals)

	assert.Empty(t, reducer.Select(nil))
	assert.Empty(t, reducer.Select(map[string]float64{}))
}
