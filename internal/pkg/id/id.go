package id

import (
	"crypto/rand"
	"strings"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// MessageID builds an RFC 5322 Message-ID for mail sent from host.
func MessageID(host string) string {
	if host == "" {
		host = "localhost"
	}
	return "<" + strings.ToLower(New()) + "@" + host + ">"
}
