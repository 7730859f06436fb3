package chat

import "maps"

// Preferences maps a step key to its extracted value: string, int64 or bool.
type Preferences map[string]any

// Clone returns a shallow copy. Values are immutable scalars.
func (p Preferences) Clone() Preferences {
	if p == nil {
		return Preferences{}
	}
	return maps.Clone(p)
}

// Has reports whether key has been answered.
func (p Preferences) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value for key when it is a string.
func (p Preferences) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Int returns the value for key when it is an integer.
func (p Preferences) Int(key string) (int64, bool) {
	v, ok := p[key].(int64)
	return v, ok
}

// Bool returns the value for key when it is a boolean.
func (p Preferences) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}
