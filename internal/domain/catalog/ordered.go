package catalog

import (
	"github.com/google/go-cmp/cmp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// emptyObject is the JSON encoding of an Ordered without entries.
var emptyObject = []byte("{}")

// Ordered is a string-keyed map that remembers insertion order.
// It is encoded as a JSON object whose members follow that order.
// The zero value is an empty map ready for reads; Set allocates lazily.
type Ordered[V any] struct {
	// entries holds the pairs in insertion order.
	entries *orderedmap.OrderedMap[string, V]
}

// NewOrdered returns an empty Ordered with room for capacity entries.
func NewOrdered[V any](capacity int) Ordered[V] {
	return Ordered[V]{
		entries: orderedmap.New[string, V](capacity),
	}
}

// Set stores value under key. A new key goes to the end, an existing key
// keeps its position.
func (o *Ordered[V]) Set(key string, value V) {
	if o.entries == nil {
		o.entries = orderedmap.New[string, V]()
	}

	o.entries.Set(key, value)
}

// Get returns the value stored under key.
func (o Ordered[V]) Get(key string) (V, bool) {
	if o.entries == nil {
		var zero V

		return zero, false
	}

	return o.entries.Get(key)
}

// Has reports whether key is present.
func (o Ordered[V]) Has(key string) bool {
	_, ok := o.Get(key)

	return ok
}

// Len returns the number of entries.
func (o Ordered[V]) Len() int {
	if o.entries == nil {
		return 0
	}

	return o.entries.Len()
}

// Keys returns the keys in insertion order.
func (o Ordered[V]) Keys() []string {
	keys := make([]string, 0, o.Len())

	o.Each(func(key string, _ V) bool {
		keys = append(keys, key)

		return true
	})

	return keys
}

// Each calls fn for every entry in insertion order until fn returns false.
func (o Ordered[V]) Each(fn func(key string, value V) bool) {
	if o.entries == nil {
		return
	}

	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Equal compares two maps by content, ignoring insertion order.
func (o Ordered[V]) Equal(other Ordered[V]) bool {
	if o.Len() != other.Len() {
		return false
	}

	equal := true

	o.Each(func(key string, value V) bool {
		otherValue, ok := other.Get(key)
		equal = ok && cmp.Equal(value, otherValue)

		return equal
	})

	return equal
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	if o.entries == nil {
		return emptyObject, nil
	}

	return o.entries.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping the member order of the document.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	entries := orderedmap.New[string, V]()
	if err := entries.UnmarshalJSON(data); err != nil {
		return err
	}

	o.entries = entries

	return nil
}
