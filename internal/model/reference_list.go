package model

// TargetList is an ordered list of opponent references. Entries are plain
// object IDs, never Creature pointers, so a target being destroyed
// elsewhere can never be kept alive or dereferenced through this list.
// Order is meaningful: the front entry is the first one retried after an
// interruption.
type TargetList struct {
	ids []uint32
}

// NewTargetList creates an empty target list.
func NewTargetList() *TargetList {
	return &TargetList{ids: make([]uint32, 0, 24)}
}

// Add inserts id unless it is already present. pushFront puts the entry at
// resume priority, otherwise it is appended.
func (l *TargetList) Add(id uint32, pushFront bool) {
	if l.Contains(id) {
		return
	}
	if pushFront {
		l.ids = append([]uint32{id}, l.ids...)
	} else {
		l.ids = append(l.ids, id)
	}
}

// Remove drops id from the list if present.
func (l *TargetList) Remove(id uint32) {
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return
		}
	}
}

// Contains reports list membership.
func (l *TargetList) Contains(id uint32) bool {
	for _, v := range l.ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns the entries in priority order. The returned slice is a copy.
func (l *TargetList) IDs() []uint32 {
	out := make([]uint32, len(l.ids))
	copy(out, l.ids)
	return out
}

// Len returns the number of entries.
func (l *TargetList) Len() int { return len(l.ids) }

// IsEmpty reports whether the list has no entries.
func (l *TargetList) IsEmpty() bool { return len(l.ids) == 0 }

// Clear removes all entries.
func (l *TargetList) Clear() { l.ids = l.ids[:0] }

// Purge removes every entry for which keep returns false. Resolution
// failures are expressed by keep itself (resolve, check health, check
// visibility) so the list stays agnostic of world lookups.
func (l *TargetList) Purge(keep func(id uint32) bool) {
	kept := l.ids[:0]
	for _, id := range l.ids {
		if keep(id) {
			kept = append(kept, id)
		}
	}
	l.ids = kept
}

// FriendList is a set of ally references. Membership only, order is
// irrelevant. Same weak-reference discipline as TargetList.
type FriendList struct {
	ids map[uint32]struct{}
}

// NewFriendList creates an empty friend list.
func NewFriendList() *FriendList {
	return &FriendList{ids: make(map[uint32]struct{})}
}

// Add inserts id into the set.
func (l *FriendList) Add(id uint32) {
	l.ids[id] = struct{}{}
}

// Remove drops id from the set.
func (l *FriendList) Remove(id uint32) {
	delete(l.ids, id)
}

// Contains reports set membership.
func (l *FriendList) Contains(id uint32) bool {
	_, ok := l.ids[id]
	return ok
}

// Len returns the number of entries.
func (l *FriendList) Len() int { return len(l.ids) }

// IDs returns the entries in unspecified order. The returned slice is a copy.
func (l *FriendList) IDs() []uint32 {
	out := make([]uint32, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	return out
}

// Clear removes all entries.
func (l *FriendList) Clear() {
	for id := range l.ids {
		delete(l.ids, id)
	}
}

// Purge removes every entry for which keep returns false.
func (l *FriendList) Purge(keep func(id uint32) bool) {
	for id := range l.ids {
		if !keep(id) {
			delete(l.ids, id)
		}
	}
}
