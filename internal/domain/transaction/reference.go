package transaction

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference returns a human-facing transaction id such as "TXN3F2A9C1B7D4E5F60".
func NewReference() string {
	return Reference("TXN")
}

// Reference builds a prefixed, upper-case id from a random UUID.
func Reference(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + id[:16]
}
