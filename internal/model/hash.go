package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IdentityHash returns the hex SHA-256 of source|link|title|date|location.
// Values are used verbatim; nil becomes "". This is the upsert conflict key
// for stored events.
func IdentityHash(source string, link, title, date, location *string) string {
	base := strings.Join([]string{source, Str(link), Str(title), Str(date), Str(location)}, "|")
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// IdentityHash returns the identity hash of e.
func (e Event) IdentityHash() string {
	return IdentityHash(e.Source, e.Link, e.Title, e.Date, e.Location)
}
