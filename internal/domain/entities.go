package domain

// Item is a named entity to be placed in semantic space, optionally backed by
// an uploaded document.
type Item struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	DocumentPath string `json:"documentPath,omitempty" yaml:"documentPath,omitempty"`
}

// HasDocument reports whether the item is document-backed.
func (i Item) HasDocument() bool {
	return i.DocumentPath != ""
}

// Pair identifies two items. A is always enumerated before B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// DistanceEntry is one row of a distance table.
type DistanceEntry struct {
	Pair     Pair    `json:"pair"`
	Distance float64 `json:"distance"`
}

// DistanceTable maps item pairs to their cosine distance in [0, 1].
// Insertion order is kept so output is deterministic.
type DistanceTable struct {
	values map[Pair]float64
	order  []Pair
}

// NewDistanceTable creates an empty table.
func NewDistanceTable() *DistanceTable {
	return &DistanceTable{values: make(map[Pair]float64)}
}

// Set records the distance for a pair.
func (t *DistanceTable) Set(a, b string, distance float64) {
	p := Pair{A: a, B: b}
	if _, exists := t.values[p]; !exists {
		t.order = append(t.order, p)
	}
	t.values[p] = distance
}

// Get returns the distance for a pair, in either orientation.
func (t *DistanceTable) Get(a, b string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	if d, ok := t.values[Pair{A: a, B: b}]; ok {
		return d, true
	}
	d, ok := t.values[Pair{A: b, B: a}]
	return d, ok
}

// Len returns the number of pairs in the table.
func (t *DistanceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Entries returns the table rows in enumeration order.
func (t *DistanceTable) Entries() []DistanceEntry {
	if t == nil {
		return nil
	}
	entries := make([]DistanceEntry, 0, len(t.order))
	for _, p := range t.order {
		entries = append(entries, DistanceEntry{Pair: p, Distance: t.values[p]})
	}
	return entries
}

// Map returns a copy of the underlying pair map.
func (t *DistanceTable) Map() map[Pair]float64 {
	out := make(map[Pair]float64, t.Len())
	if t == nil {
		return out
	}
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// ItemFailure records an item that produced no embedding.
type ItemFailure struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// DistanceResult is the outcome of a distance computation. Table is never nil.
type DistanceResult struct {
	Table    *DistanceTable `json:"-"`
	Embedded int            `json:"embedded"`
	Failures []ItemFailure  `json:"failures,omitempty"`
}

// Partial reports whether some items were excluded from the table.
func (r *DistanceResult) Partial() bool {
	return len(r.Failures) > 0
}
