package userstore

// index is the in-memory view shared by the memory and CSV backends.
// It is not safe for concurrent use; owners guard it with their own lock.
type index struct {
	byKey map[string]Record
	byID  map[string]Record
	order []string
}

func newIndex() *index {
	return &index{
		byKey: make(map[string]Record),
		byID:  make(map[string]Record),
	}
}

// check reports whether rec could be added without breaking uniqueness.
func (ix *index) check(rec Record) error {
	if _, ok := ix.byKey[Key(rec.Username)]; ok {
		return ErrConflict
	}
	if _, ok := ix.byID[rec.ID]; ok {
		return ErrConflict
	}
	return nil
}

func (ix *index) add(rec Record) {
	ix.byKey[Key(rec.Username)] = rec
	ix.byID[rec.ID] = rec
	ix.order = append(ix.order, rec.ID)
}

func (ix *index) byUsername(username string) (Record, error) {
	rec, ok := ix.byKey[Key(username)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (ix *index) get(id string) (Record, error) {
	rec, ok := ix.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (ix *index) all() []Record {
	out := make([]Record, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.byID[id])
	}
	return out
}
