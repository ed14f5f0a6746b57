package signature

import (
	"sort"
	"strings"
)

// Field is the parameter carrying the digest on both legs of the protocol.
const Field = "SHASIGN"

// Params is one flat request or callback parameter set. Keys are
// case-sensitive and values are kept raw: any percent-encoding is applied by
// the transport after signing.
type Params map[string]string

// SortedKeys returns the keys in ordinal ascending order.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Lookup finds a key ignoring ASCII case. Gateways echo some fields with
// mixed-case names (orderID, PAYID).
func (p Params) Lookup(key string) (string, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
