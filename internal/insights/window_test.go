package insights

import (
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txnsOnDays(days ...int) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(days))
	for i, d := range days {
		out = append(out, domain.Transaction{ID: i + 1, Date: dayN(d)})
	}
	return out
}

func TestFirstWindow_InclusiveEnd(t *testing.T) {
	// Day 14 is inside a 14-day window anchored on day 0.
	w, ok := FirstWindow(txnsOnDays(0, 5, 14), 14, 3)
	require.True(t, ok)
	assert.Equal(t, dayN(0), w.Start)
	assert.Equal(t, dayN(14), w.End)
	assert.Len(t, w.Members, 3)
}

func TestFirstWindow_OutsideWindow(t *testing.T) {
	_, ok := FirstWindow(txnsOnDays(0, 5, 15), 14, 3)
	assert.False(t, ok)
}

func TestFirstWindow_ReturnsFirstQualifyingAnchor(t *testing.T) {
	w, ok := FirstWindow(txnsOnDays(0, 40, 41, 42, 100, 101, 102), 14, 3)
	require.True(t, ok)
	assert.Equal(t, dayN(40), w.Start)
	assert.Len(t, w.Members, 3)
}

func TestFirstWindow_TooFew(t *testing.T) {
	_, ok := FirstWindow(nil, 14, 1)
	assert.False(t, ok)

	_, ok = FirstWindow(txnsOnDays(0, 1), 14, 3)
	assert.False(t, ok)
}

func TestGroupByGap(t *testing.T) {
	groups := GroupByGap(txnsOnDays(0, 10, 40, 71, 72), 30)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 3, "gap of exactly 30 days joins the trip")
	assert.Len(t, groups[1], 2)
	assert.Equal(t, dayN(71), groups[1][0].Date)
}

func TestGroupByGap_Empty(t *testing.T) {
	assert.Empty(t, GroupByGap(nil, 30))
}
