// Package table implements a bounded, deterministic keyed store for metadata
// bookkeeping alongside the numeric pipeline.
//
// The table is an open-addressing hash map over a caller-provided entry
// slice: no allocation after Init, capacity fixed for the table's lifetime,
// and every behavior (hashing, collision probing, iteration order) is a
// pure function of the insertion sequence, never of memory addresses. Keys
// hash with the Jenkins one-at-a-time function, which produces identical
// values on any architecture regardless of endianness or word size, and
// collisions resolve by linear probing.
//
// Unlike the numeric engines, which report failure by leaving their output
// untouched, the table exposes explicit result codes on every operation.
package table

// Result reports the outcome of a table operation.
type Result uint8

const (
	// OK means the operation succeeded.
	OK Result = iota

	// Full means the table has no free slots for another insert.
	Full

	// KeyExists means an insert found the key already present.
	KeyExists

	// NotFound means a lookup found no entry for the key.
	NotFound

	// InvalidParam means a required argument was absent or unusable.
	InvalidParam
)

// String returns a short name for the result.
func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Full:
		return "full"
	case KeyExists:
		return "key exists"
	case NotFound:
		return "not found"
	case InvalidParam:
		return "invalid param"
	default:
		return "unknown"
	}
}

// KeySize is the fixed entry key field size in bytes. Keys longer than
// KeySize-1 bytes are truncated on insert and lookup, matching the bounded
// storage contract.
const KeySize = 32

// Entry is one slot of the table's caller-provided storage. The fixed-size
// key field keeps the entry layout deterministic.
type Entry struct {
	Key      [KeySize]byte
	Value    int32
	Occupied bool
}

// Table is a deterministic hash table over caller-owned entry storage.
type Table struct {
	entries []Entry
	count   int
}

// jenkinsHash is the Jenkins one-at-a-time hash over the significant bytes
// of a key.
func jenkinsHash(key []byte) uint32 {
	var h uint32
	for _, b := range key {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

// truncateKey returns the significant bytes of a key: at most KeySize-1.
func truncateKey(key string) []byte {
	if len(key) > KeySize-1 {
		key = key[:KeySize-1]
	}
	return []byte(key)
}

// Init binds the table to a caller-provided entry slice and zero-fills it so
// the initial state is identical on every run. The slice's length is the
// table's capacity for its whole lifetime.
func Init(t *Table, entries []Entry) Result {
	if t == nil || entries == nil || len(entries) == 0 {
		return InvalidParam
	}

	t.entries = entries
	t.count = 0
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	return OK
}

// Capacity returns the fixed number of slots.
func (t *Table) Capacity() int {
	return len(t.entries)
}

// Count returns the number of occupied slots.
func (t *Table) Count() int {
	return t.count
}

// keyEqual compares an entry's key field against the significant key bytes.
func keyEqual(stored *[KeySize]byte, key []byte) bool {
	if len(key) >= KeySize {
		return false
	}
	for i, b := range key {
		if stored[i] != b {
			return false
		}
	}
	// Stored keys are NUL-terminated by construction.
	return stored[len(key)] == 0
}

// Insert stores a key-value pair. Collisions resolve by linear probing from
// the hashed slot, which is deterministic for a given insertion sequence.
// Inserting a key that is already present returns KeyExists and changes
// nothing.
func (t *Table) Insert(key string, value int32) Result {
	if t == nil || t.entries == nil || key == "" {
		return InvalidParam
	}
	if t.count >= len(t.entries) {
		return Full
	}

	k := truncateKey(key)
	idx := int(jenkinsHash(k) % uint32(len(t.entries)))

	for t.entries[idx].Occupied {
		if keyEqual(&t.entries[idx].Key, k) {
			return KeyExists
		}
		idx = (idx + 1) % len(t.entries)
	}

	e := &t.entries[idx]
	e.Key = [KeySize]byte{}
	copy(e.Key[:KeySize-1], k)
	e.Value = value
	e.Occupied = true
	t.count++
	return OK
}

// Get retrieves the value stored under key. Probing stops at the first empty
// slot or after a full wrap of the table.
func (t *Table) Get(key string) (int32, Result) {
	if t == nil || t.entries == nil || key == "" {
		return 0, InvalidParam
	}

	k := truncateKey(key)
	idx := int(jenkinsHash(k) % uint32(len(t.entries)))
	start := idx

	for t.entries[idx].Occupied {
		if keyEqual(&t.entries[idx].Key, k) {
			return t.entries[idx].Value, OK
		}
		idx = (idx + 1) % len(t.entries)
		if idx == start {
			break
		}
	}
	return 0, NotFound
}

// Iterate calls fn for every occupied entry in ascending slot order. The
// order depends only on the insertion sequence, never on memory addresses,
// so it is identical across runs and platforms.
func (t *Table) Iterate(fn func(key string, value int32)) {
	if t == nil || t.entries == nil || fn == nil {
		return
	}

	for i := range t.entries {
		if !t.entries[i].Occupied {
			continue
		}
		fn(entryKeyString(&t.entries[i].Key), t.entries[i].Value)
	}
}

// entryKeyString returns the stored key up to its NUL terminator.
func entryKeyString(k *[KeySize]byte) string {
	n := 0
	for n < KeySize && k[n] != 0 {
		n++
	}
	return string(k[:n])
}
