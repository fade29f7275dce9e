// Package geo maps IP addresses to coarse locations with VPN suspicion and a
// confidence estimate. Resolution is an enrichment: it is time-bounded and
// never a hard dependency for authentication to proceed.
package geo

// Confidence levels used by the resolver. Private ranges resolve exactly;
// provider answers are best-effort; failures are marked low.
const (
	ConfidenceExact = 1.0
	ConfidenceGood  = 0.8
	ConfidenceLow   = 0.1
)

// Location is the resolver output. Nil fields mean the attribute could not be
// determined; nullability is explicit rather than signaled through zero values.
type Location struct {
	Country    *string
	Region     *string
	City       *string
	Latitude   *float64
	Longitude  *float64
	Timezone   *string
	ISP        *string
	IsVPN      bool
	Confidence float64
}

// Resolved reports whether the lookup produced at least a country.
func (l *Location) Resolved() bool {
	return l != nil && l.Country != nil
}

// Unknown is the low-confidence result returned on timeout, provider failure,
// or an unparseable address.
func Unknown() *Location {
	return &Location{Confidence: ConfidenceLow}
}

// Local is the fixed marker for private, loopback, and link-local ranges.
func Local() *Location {
	country := "Local"
	city := "Private Network"
	isp := "Internal"
	return &Location{
		Country:    &country,
		City:       &city,
		ISP:        &isp,
		Confidence: ConfidenceExact,
	}
}
