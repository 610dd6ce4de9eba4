package normalize

import "strings"

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSourcePriority sets the tie-break order between sources. Earlier
// names win. Sources not listed rank below every listed one.
func WithSourcePriority(names ...string) Option {
	return func(n *Normalizer) {
		n.priority = make(map[string]int, len(names))
		for i, name := range names {
			key := strings.ToLower(strings.TrimSpace(name))
			if _, dup := n.priority[key]; key != "" && !dup {
				n.priority[key] = i
			}
		}
	}
}
