package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Run("Unequal lengths", func(t *testing.T) {
		_, err := New("a",
			NewColumn("id", Integer(1), Integer(2)),
			NewColumn("name", String("x")),
		)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("Duplicate names", func(t *testing.T) {
		_, err := New("a", NewColumn("id"), NewColumn("id"))
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("Empty dataset", func(t *testing.T) {
		ds, err := New("a")
		require.NoError(t, err)
		assert.Equal(t, 0, ds.NumRows())
		assert.Equal(t, 0, ds.NumColumns())
	})
}

func TestDataset_OwnsItsColumns(t *testing.T) {
	values := []Value{Integer(1), Integer(2)}
	ds, err := New("a", NewColumn("id", values...))
	require.NoError(t, err)

	values[0] = Integer(99)
	v, ok := ds.Value(0, "id")
	require.True(t, ok)
	assert.Equal(t, Integer(1), v)

	col, ok := ds.Column("id")
	require.True(t, ok)
	col.Values[1] = Integer(42)
	v, _ = ds.Value(1, "id")
	assert.Equal(t, Integer(2), v)
}

func TestDataset_Accessors(t *testing.T) {
	ds, err := FromRows("orders", []string{"id", "name"}, [][]any{{1, "a"}, {2, nil}})
	require.NoError(t, err)

	assert.Equal(t, "orders", ds.Label())
	assert.Equal(t, "renamed", ds.WithLabel("renamed").Label())
	assert.Equal(t, 2, ds.NumRows())
	assert.True(t, ds.HasColumn("name"))
	assert.False(t, ds.HasColumn("missing"))
	assert.Equal(t, []Value{Integer(2), Null()}, ds.Row(1))
	assert.Equal(t, KindInteger, ds.ColumnKind("id"))
	assert.Equal(t, KindString, ds.ColumnKind("name"))
	assert.Equal(t, KindNull, ds.ColumnKind("missing"))

	_, ok := ds.Value(5, "id")
	assert.False(t, ok)
}

func TestFromRows_Errors(t *testing.T) {
	_, err := FromRows("a", []string{"id"}, [][]any{{1, 2}})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = FromRows("a", []string{"id", "tags"}, [][]any{{1, []int{1}}})
	require.Error(t, err)
	var tce *TypeCoercionError
	require.True(t, errors.As(err, &tce))
	assert.Equal(t, "tags", tce.Column)
	assert.Equal(t, "[]int", tce.GoType)
}
