// Package distance resolves driving distances from a delivery address
// to the nearest service branch.
package distance

import (
	"strings"
	"unicode"
)

// NormalizeKey lowercases a string and strips everything but letters
// and digits. Cache keys are built from normalized values so that
// formatting differences collapse onto one entry.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CacheKey derives the cache key for a (branch address, delivery
// location) pair
func CacheKey(branchAddress, deliveryLocation string) string {
	return NormalizeKey(branchAddress) + NormalizeKey(deliveryLocation)
}

// AddressVariations returns candidate address strings in order of
// specificity. The first variation the routing provider accepts wins;
// the rest are never attempted.
func AddressVariations(address string) []string {
	full := strings.TrimSpace(address)
	if full == "" {
		return nil
	}

	parts := splitAddress(full)
	street, city, state, zip := addressComponents(parts)

	candidates := []string{full}
	if len(parts) > 1 {
		candidates = append(candidates, strings.Join(parts[:len(parts)-1], ", "))
	}
	candidates = append(candidates,
		joinNonEmpty(street, city, state),
		joinNonEmpty(city, state, zip),
		joinNonEmpty(city, state),
		street,
	)

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func splitAddress(address string) []string {
	raw := strings.Split(address, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// addressComponents interprets a comma-separated address as
// "street, city, STATE zip" best-effort. Missing pieces come back
// empty and drop out of the variation ladder.
func addressComponents(parts []string) (street, city, state, zip string) {
	if len(parts) > 0 {
		street = parts[0]
	}
	if len(parts) > 1 {
		city = parts[1]
	}
	if len(parts) > 2 {
		fields := strings.Fields(parts[len(parts)-1])
		for _, f := range fields {
			switch {
			case isZip(f):
				zip = f
			case state == "":
				state = f
			}
		}
	}
	return street, city, state, zip
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
