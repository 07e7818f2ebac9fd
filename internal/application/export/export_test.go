package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level string

type row struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Level   level           `json:"level"`
	Amount  decimal.Decimal `json:"amount"`
	Due     *time.Time      `json:"due"`
	Tags    []string        `json:"tags"`
	Count   int             `json:"count"`
	Meta    map[string]int  `json:"meta"`
	private string
}

func lister(rows []row, calls *int) ListFunc[row] {
	return func(_ context.Context, q query.Query) (query.Page[row], error) {
		*calls++
		return query.Paginate(rows, q), nil
	}
}

func TestCollect_WalksAllPages(t *testing.T) {
	rows := make([]row, 250)
	for i := range rows {
		rows[i] = row{Count: i}
	}
	calls := 0
	got, err := Collect(context.Background(), lister(rows, &calls), query.Query{Page: 4, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, got, 250)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 249, got[249].Count)
}

func TestCollect_RowCap(t *testing.T) {
	calls := 0
	_, err := Collect(context.Background(), lister(make([]row, MaxRows+1), &calls), query.Query{})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestCollect_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), func(context.Context, query.Query) (query.Page[row], error) {
		return query.Page[row]{}, boom
	}, query.Query{})
	assert.ErrorIs(t, err, boom)
}

func TestWrite_LocalStorage(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	e := NewExporter(store)
	e.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	due := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	id := uuid.MustParse("7c1f3c52-8d2b-4a53-9a0e-4d0f0c5c9b11")
	rows := []row{
		{ID: id, Name: "Acme, Inc.", Level: "gold", Amount: decimal.RequireFromString("12.50"), Due: &due, Tags: []string{"a", "b"}, Count: 3, Meta: map[string]int{"x": 1}},
		{Name: "Globex"},
	}

	res, err := Write(context.Background(), e, "crm", "customers", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Empty(t, res.URL)
	assert.True(t, strings.HasPrefix(res.Key, "crm/customers/20260301T100000Z-"), res.Key)
	assert.True(t, strings.HasSuffix(res.Key, ".csv"))

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "name", "level", "amount", "due", "tags", "count", "meta"}, records[0])
	assert.Equal(t, []string{id.String(), "Acme, Inc.", "gold", "12.5", "2026-04-02T09:30:00Z", "a;b", "3", `{"x":1}`}, records[1])
	assert.Equal(t, "", records[2][4], "nil time is an empty cell")
	assert.Equal(t, "", records[2][5], "nil slice is an empty cell")
}

func TestWrite_RejectsNonStruct(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = Write(context.Background(), NewExporter(store), "crm", "numbers", []int{1, 2})
	assert.Error(t, err)
}

func TestCell(t *testing.T) {
	n := 7
	var nilDec *decimal.Decimal
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{int64(-4), "-4"},
		{1.25, "1.25"},
		{&n, "7"},
		{nilDec, ""},
		{level("silver"), "silver"},
		{[]string{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cell(tt.in), "%#v", tt.in)
	}
}
