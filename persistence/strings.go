package persistence

// StringTable deduplicates names across sections of one snapshot.
//
// A table is an explicit encoding context: the writer and the reader each
// use their own table, and both must pass it to every PutName/Name call in
// the same order. Tables are not safe for concurrent use.
type StringTable struct {
	index   map[string]int32
	strings []string
}

// NewStringTable creates an empty table.
func NewStringTable() *StringTable {
	return &StringTable{index: make(map[string]int32)}
}

// Len returns the number of distinct strings registered.
func (t *StringTable) Len() int { return len(t.strings) }

func (t *StringTable) lookup(s string) (int32, bool) {
	idx, ok := t.index[s]
	return idx, ok
}

func (t *StringTable) add(s string) {
	if _, ok := t.index[s]; ok {
		return
	}
	t.index[s] = int32(len(t.strings))
	t.strings = append(t.strings, s)
}

func (t *StringTable) at(idx int32) (string, bool) {
	if idx < 0 || int(idx) >= len(t.strings) {
		return "", false
	}
	return t.strings[idx], true
}
