package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeriveNetwork computes the server-side fingerprint from request signals the
// client cannot omit. It is deliberately independent of any client-submitted
// value: the two are recorded as separate signals on every attempt.
func DeriveNetwork(ip, userAgent, acceptLanguage string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(ip)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(userAgent)))
	h.Write([]byte{0})
	h.Write([]byte(normalizeAcceptLanguage(acceptLanguage)))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeAcceptLanguage strips quality weights and whitespace so trivial
// header reordering does not change the fingerprint.
func normalizeAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Split(header, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		lang := strings.TrimSpace(strings.SplitN(p, ";", 2)[0])
		if lang != "" {
			langs = append(langs, strings.ToLower(lang))
		}
	}
	return strings.Join(langs, ",")
}
