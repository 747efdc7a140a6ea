package domain

import "net/url"

// FormValues is an ordered set of submitted form fields. A field that was not
// submitted is absent, which is distinct from a field submitted empty.
type FormValues struct {
	keys   []string
	values map[string]string
}

// FormValuesFrom picks the named fields out of a parsed form, in the given
// order. Only the first value of a repeated field is kept.
func FormValuesFrom(v url.Values, fields ...string) FormValues {
	var f FormValues
	for _, name := range fields {
		vals, ok := v[name]
		if !ok || len(vals) == 0 {
			continue
		}
		f.Set(name, vals[0])
	}
	return f
}

// Set stores a field, keeping its original position if it was already present.
func (f *FormValues) Set(name, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = value
}

// Get returns the field value and whether it was submitted at all.
func (f FormValues) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Value returns the field value, or "" when absent.
func (f FormValues) Value(name string) string {
	return f.values[name]
}

// Keys returns field names in submission order.
func (f FormValues) Keys() []string {
	return append([]string(nil), f.keys...)
}
