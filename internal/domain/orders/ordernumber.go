package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

var tagEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// OrderNumberGenerator issues customer-facing order numbers. The secret
// (ORDER_NUMBER_SECRET) keys the HMAC so numbers cannot be enumerated.
type OrderNumberGenerator struct {
	key []byte
}

func NewOrderNumberGenerator(secret string) *OrderNumberGenerator {
	return &OrderNumberGenerator{key: []byte(secret)}
}

// Generate returns a number such as SOUQ-260310-7K2Q9F: the UTC order day
// followed by six characters of an HMAC over the user, the checkout time and
// a random nonce.
func (g *OrderNumberGenerator) Generate(userID int64, placedAt time.Time) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(userID))
	binary.BigEndian.PutUint64(buf[8:], uint64(placedAt.UnixNano()))
	nonce := uuid.New()

	mac := hmac.New(sha256.New, g.key)
	mac.Write(buf[:])
	mac.Write(nonce[:])

	return "SOUQ-" + placedAt.UTC().Format("060102") + "-" + tagEncoding.EncodeToString(mac.Sum(nil))[:6]
}
