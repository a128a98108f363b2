package cache

import "strings"

// Key is a namespaced cache key.
type Key struct {
	// Namespace is the leading key component (e.g. "products").
	Namespace string

	// Segments follow the namespace in order.
	Segments []string
}

// String joins namespace and segments with ":".
//
// Example:
//
//	products:detail:amazon:B0CHX1W1XY
func (k Key) String() string {
	parts := make([]string, 0, len(k.Segments)+1)
	if k.Namespace != "" {
		parts = append(parts, k.Namespace)
	}
	parts = append(parts, k.Segments...)
	return strings.Join(parts, ":")
}
