package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetList_AddDeduplicates(t *testing.T) {
	list := NewTargetList()

	list.Add(10, false)
	list.Add(20, false)
	list.Add(10, false)

	assert.Equal(t, []uint32{10, 20}, list.IDs())
	assert.Equal(t, 2, list.Len())
}

func TestTargetList_PushFront(t *testing.T) {
	list := NewTargetList()

	list.Add(10, false)
	list.Add(20, false)
	list.Add(30, true)

	assert.Equal(t, []uint32{30, 10, 20}, list.IDs())

	// pushFront on an already present id must not reorder it
	list.Add(20, true)
	assert.Equal(t, []uint32{30, 10, 20}, list.IDs())
}

func TestTargetList_Remove(t *testing.T) {
	list := NewTargetList()
	list.Add(1, false)
	list.Add(2, false)
	list.Add(3, false)

	list.Remove(2)
	assert.Equal(t, []uint32{1, 3}, list.IDs())

	list.Remove(999)
	assert.Equal(t, []uint32{1, 3}, list.IDs())

	list.Remove(1)
	list.Remove(3)
	assert.True(t, list.IsEmpty())
}

func TestTargetList_PurgeKeepsOrder(t *testing.T) {
	list := NewTargetList()
	for _, id := range []uint32{5, 6, 7, 8, 9} {
		list.Add(id, false)
	}

	list.Purge(func(id uint32) bool { return id%2 == 1 })

	assert.Equal(t, []uint32{5, 7, 9}, list.IDs())
}

func TestTargetList_IDsReturnsCopy(t *testing.T) {
	list := NewTargetList()
	list.Add(1, false)
	list.Add(2, false)

	ids := list.IDs()
	ids[0] = 42

	assert.Equal(t, []uint32{1, 2}, list.IDs())
}

func TestFriendList_SetSemantics(t *testing.T) {
	list := NewFriendList()

	list.Add(7)
	list.Add(7)
	list.Add(8)

	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Contains(7))
	assert.False(t, list.Contains(9))

	list.Remove(7)
	assert.False(t, list.Contains(7))

	list.Purge(func(id uint32) bool { return false })
	assert.Equal(t, 0, list.Len())
}
