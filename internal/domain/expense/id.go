package expense

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"
)

// RecordID derives the stable 16-hex-char id of a record.
// It is a pure function of its inputs, so re-parsing a document
// reproduces the same ids.
func RecordID(subjectID, date string, amount decimal.Decimal, description, documentID string) string {
	key := strings.Join([]string{
		subjectID,
		date,
		amount.StringFixed(2),
		description,
		documentID,
	}, "|")

	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
