package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single value written to the store.
type Entry struct {
	// Key is the fully namespaced cache key.
	Key string

	// Value is the JSON encoding of the cached payload.
	Value []byte

	// TTL is how long the store keeps the value. Must be at least one second.
	TTL time.Duration
}

// Validate checks the entry can be written.
func (e Entry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidEntry)
	}
	if e.TTL < time.Second {
		return fmt.Errorf("%w: ttl %s below one second", ErrInvalidEntry, e.TTL)
	}
	if !json.Valid(e.Value) {
		return fmt.Errorf("%w: value is not valid JSON", ErrInvalidEntry)
	}
	return nil
}

// HitPolicy decides whether a stored value counts as a cache hit.
type HitPolicy int

const (
	// HitTruthy only accepts truthy values. null, false, 0, "", [] and {}
	// are treated as misses and recomputed.
	HitTruthy HitPolicy = iota

	// HitPresent accepts any stored value.
	HitPresent
)

// String returns the policy name used in configuration.
func (p HitPolicy) String() string {
	switch p {
	case HitTruthy:
		return "truthy"
	case HitPresent:
		return "present"
	default:
		return fmt.Sprintf("HitPolicy(%d)", int(p))
	}
}

// ParseHitPolicy converts a configuration value into a HitPolicy.
func ParseHitPolicy(s string) (HitPolicy, error) {
	switch s {
	case "", "truthy":
		return HitTruthy, nil
	case "present":
		return HitPresent, nil
	default:
		return HitTruthy, fmt.Errorf("unknown cache hit policy %q", s)
	}
}

// IsTruthy reports whether a JSON document is truthy.
func IsTruthy(raw []byte) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false, fmt.Errorf("%w: empty value", ErrInvalidEntry)
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case string:
		return val != "", nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		return f != 0, nil
	case []any:
		return len(val) > 0, nil
	case map[string]any:
		return len(val) > 0, nil
	default:
		return true, nil
	}
}
