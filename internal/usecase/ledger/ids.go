package ledger

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// IDGenerator allocates entity IDs
type IDGenerator interface {
	NewID() string
}

// uuidGenerator issues UUIDv7 strings, which sort in allocation order
type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SimulatedTxHash derives a deterministic pseudo transaction hash from the
// transaction's fields. Nothing is signed or submitted.
func SimulatedTxHash(tx *domain.Transaction) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.Join([]string{
		tx.ID,
		string(tx.Kind),
		tx.From,
		tx.To,
		domain.FormatAmount(tx.Amount),
		string(tx.Token),
		tx.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
	}, "|")))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
