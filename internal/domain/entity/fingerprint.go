package entity

import (
	"strconv"
	"strings"
)

// Fingerprint identifies a (filter, offset) pair. It is the result cache
// key and the token used to tell whether a response is still relevant.
type Fingerprint string

const fingerprintSep = "#"

func NewFingerprint(f Filter, offset int) Fingerprint {
	return Fingerprint(f.Key() + fingerprintSep + strconv.Itoa(offset))
}

// Base is the filter part of the fingerprint.
func (fp Fingerprint) Base() string {
	s := string(fp)
	if i := strings.LastIndex(s, fingerprintSep); i >= 0 {
		return s[:i]
	}

	return s
}

func (fp Fingerprint) Offset() int {
	s := string(fp)

	i := strings.LastIndex(s, fingerprintSep)
	if i < 0 {
		return 0
	}

	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0
	}

	return n
}

func (fp Fingerprint) String() string {
	return string(fp)
}
