package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria(t *testing.T) {
	known := func(f string) bool {
		switch f {
		case "status", "orderDate", "totalAmount", "customerId":
			return true
		}
		return false
	}

	q := New().
		Where("status", []string{"pending", "shipped"}).
		Where("customerId", "c-1").
		Where("orderDateFrom", "2024-03-01").
		Where("orderDateTo", "2024-03-31").
		Where("minTotalAmount", "100.5").
		Where("maxTotalAmount", 900).
		Where("color", "red").
		Where("orderDateFrom2", "x").
		Where("search", "ignored").
		Where("note", "")

	byKey := map[string][]Criterion{}
	for _, c := range q.Criteria(known) {
		byKey[c.Field] = append(byKey[c.Field], c)
	}

	require.Len(t, byKey["status"], 1)
	assert.Equal(t, OpIn, byKey["status"][0].Op)
	assert.Equal(t, []any{"pending", "shipped"}, byKey["status"][0].Values)

	assert.Equal(t, Criterion{Field: "customerId", Op: OpEq, Value: "c-1"}, byKey["customerId"][0])

	require.Len(t, byKey["orderDate"], 2)
	for _, c := range byKey["orderDate"] {
		switch c.Op {
		case OpGTE:
			assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Value)
		case OpLTE:
			assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), c.Value)
		default:
			t.Fatalf("unexpected op %v", c.Op)
		}
	}

	require.Len(t, byKey["totalAmount"], 2)
	for _, c := range byKey["totalAmount"] {
		if c.Op == OpGTE {
			assert.Equal(t, 100.5, c.Value)
		} else {
			assert.Equal(t, 900.0, c.Value)
		}
	}

	assert.Equal(t, OpNever, byKey["color"][0].Op)
	assert.Equal(t, OpNever, byKey["orderDateFrom2"][0].Op)
	assert.NotContains(t, byKey, "search")
	assert.NotContains(t, byKey, "note")
}

func TestCriteria_UnparsableBound(t *testing.T) {
	known := func(f string) bool { return f == "orderDate" }
	c := New().Where("orderDateFrom", "yesterday").Criteria(known)
	require.Len(t, c, 1)
	assert.Equal(t, OpNever, c[0].Op)
}
