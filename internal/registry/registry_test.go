package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGetRemove(t *testing.T) {
	r := New[string]("widget")

	id := r.Insert("hello")
	assert.NotZero(t, id)

	got, err := r.Get(id)
	require.Nil(t, err)
	assert.Equal(t, "hello", got)

	_, err = r.Remove(id)
	require.Nil(t, err)

	_, err = r.Get(id)
	require.NotNil(t, err)
	assert.Equal(t, "InvalidHandle", err.Kind.String())
}

func TestRemoveIsNotReissued(t *testing.T) {
	r := New[int]("thing")

	id1 := r.Insert(1)
	_, _ = r.Remove(id1)
	id2 := r.Insert(2)

	assert.NotEqual(t, id1, id2)

	_, err := r.Get(id1)
	require.NotNil(t, err)
}

func TestDoubleRemoveFails(t *testing.T) {
	r := New[int]("thing")
	id := r.Insert(42)

	_, err := r.Remove(id)
	require.Nil(t, err)

	_, err = r.Remove(id)
	require.NotNil(t, err)
	assert.Equal(t, "InvalidHandle", err.Kind.String())
}

func TestHandleZeroIsReservedForFailure(t *testing.T) {
	r := New[int]("thing")
	_, err := r.Get(0)
	require.NotNil(t, err)
}

func TestClearAll(t *testing.T) {
	r := New[int]("thing")
	r.Insert(1)
	r.Insert(2)
	r.Insert(3)

	removed := r.ClearAll()
	assert.Len(t, removed, 3)
	assert.Equal(t, 0, r.Len())
}

func TestRemoveWhere(t *testing.T) {
	r := New[int]("thing")
	idA := r.Insert(10)
	idB := r.Insert(20)
	_ = idB

	removed := r.RemoveWhere(func(id uint32, entity int) bool {
		return id == idA
	})

	assert.Equal(t, []int{10}, removed)
	assert.Equal(t, 1, r.Len())
}
