package resolver

import (
	"strings"
	"unicode"
)

// AddressMatcher reports whether a string is already an address of some known currency.
type AddressMatcher interface {
	IsKnownAddress(s string) bool
}

// Detector recognizes PayID and FIO handles. It is pure and safe for concurrent use.
type Detector struct {
	known AddressMatcher
}

// NewDetector creates a detector. Strings accepted by known are never
// treated as handles; known may be nil.
func NewDetector(known AddressMatcher) *Detector {
	return &Detector{known: known}
}

// Detect returns the handle raw denotes, if any. FIO (local@domain) is
// tried before PayID (local$domain).
func (d *Detector) Detect(raw string) (Handle, bool) {
	if raw == "" || strings.ContainsAny(raw, ":/?#") || strings.ContainsFunc(raw, unicode.IsSpace) {
		return Handle{}, false
	}
	if d.isKnownAddress(raw) {
		return Handle{}, false
	}

	if h, ok := detectFIO(raw); ok {
		return h, true
	}
	return d.detectPayID(raw)
}

// IsHandle reports whether raw is a PayID or FIO handle.
func (d *Detector) IsHandle(raw string) bool {
	_, ok := d.Detect(raw)
	return ok
}

func detectFIO(raw string) (Handle, bool) {
	if strings.Count(raw, "@") != 1 || strings.Contains(raw, "$") {
		return Handle{}, false
	}

	local, domain, _ := strings.Cut(raw, "@")
	if local == "" || domain == "" {
		return Handle{}, false
	}

	return Handle{Raw: raw, Kind: KindFIO, Local: local, Domain: domain}, true
}

func (d *Detector) detectPayID(raw string) (Handle, bool) {
	if strings.Count(raw, "$") != 1 || strings.Contains(raw, "@") {
		return Handle{}, false
	}

	local, domain, _ := strings.Cut(raw, "$")
	if local == "" || domain == "" {
		return Handle{}, false
	}

	// Any dot is enough; DNS syntax is left to the lookup.
	if !strings.Contains(domain, ".") {
		return Handle{}, false
	}

	if d.isKnownAddress(local) {
		return Handle{}, false
	}

	return Handle{Raw: raw, Kind: KindPayID, Local: local, Domain: domain}, true
}

func (d *Detector) isKnownAddress(s string) bool {
	return d.known != nil && d.known.IsKnownAddress(s)
}
