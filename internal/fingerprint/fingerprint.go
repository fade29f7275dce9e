// Package fingerprint derives stable device identifiers from passively
// observable browser and network characteristics.
//
// Two independent identifiers exist per attempt: the client fingerprint,
// composed from deep browser probes and submitted with the auth request, and
// the network fingerprint, derived server-side from request headers. They are
// recorded as separate signals and never conflated.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
)

// Unavailable is the sentinel value recorded for a component whose probe
// failed. A failing probe degrades that one component only.
const Unavailable = "unavailable"

// Fingerprint is a value, not an entity: only the ID and selected component
// summaries ever travel to the server or storage.
type Fingerprint struct {
	ID         string
	Components map[string]any
	// Fallback marks lower-confidence identifiers: either the hashing
	// primitive was unavailable or the minimal probe set was used. Callers
	// must not assume collision resistance for fallback fingerprints.
	Fallback bool
}

var hexID = regexp.MustCompile(`^[0-9a-f]{8,64}$`)

// ValidID reports whether a client-submitted fingerprint ID has the expected
// shape. The server never treats the value as authoritative without this.
func ValidID(id string) bool {
	return hexID.MatchString(id)
}

// canonicalize serializes a component map with keys sorted so that identical
// component sets always produce identical bytes.
func canonicalize(components map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(components[k])
		if err != nil {
			return nil, fmt.Errorf("component %q not serializable: %w", k, err)
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// hashComponents returns the hex SHA-256 of the canonical serialization. The
// second return reports whether the non-cryptographic fallback hash was used.
func hashComponents(components map[string]any, hasher Hasher) (string, bool, error) {
	canonical, err := canonicalize(components)
	if err != nil {
		return "", false, err
	}

	if hasher != nil {
		if sum, ok := hasher.Sum(canonical); ok {
			return sum, false, nil
		}
	}

	// Deterministic non-cryptographic fallback. Weaker uniqueness, no
	// collision resistance; callers see Fallback=true.
	h := fnv.New64a()
	_, _ = h.Write(canonical)
	return fmt.Sprintf("%016x", h.Sum64()), true, nil
}

// Hasher abstracts the cryptographic hash so environments without one (or
// tests forcing the degraded path) fall back deterministically.
type Hasher interface {
	Sum(data []byte) (hexSum string, ok bool)
}

// SHA256Hasher is the default Hasher.
type SHA256Hasher struct{}

func (SHA256Hasher) Sum(data []byte) (string, bool) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), true
}

// FromComponents builds a fingerprint from a client-submitted component map
// after validating its shape. Unknown keys are dropped, values are restricted
// to JSON scalars and string slices, and an empty result is rejected.
func FromComponents(components map[string]any) (*Fingerprint, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("empty component map")
	}

	cleaned := make(map[string]any, len(components))
	for _, name := range ComponentNames() {
		v, ok := components[name]
		if !ok {
			continue
		}
		if !validComponentValue(v) {
			cleaned[name] = Unavailable
			continue
		}
		cleaned[name] = v
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no recognized components")
	}

	id, fallback, err := hashComponents(cleaned, SHA256Hasher{})
	if err != nil {
		return nil, err
	}

	return &Fingerprint{ID: id, Components: cleaned, Fallback: fallback}, nil
}

func validComponentValue(v any) bool {
	switch val := v.(type) {
	case string:
		return len(val) <= 4096
	case bool, float64, int, int64:
		return true
	case []string:
		return len(val) <= 512
	case []any:
		if len(val) > 512 {
			return false
		}
		for _, e := range val {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
