package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// WebhookTokenBytes is the entropy of a webhook token before hex encoding.
// 24 bytes encode to 48 characters, well inside the 64-char token column.
const WebhookTokenBytes = 24

// GenerateWebhookToken mints the opaque token that forms the last path
// segment of a webhook URL. Tokens are bearer credentials: knowing one is
// enough to post sales into the owning account, so they come from the
// crypto random source.
func GenerateWebhookToken() (string, error) {
	b := make([]byte, WebhookTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.New("failed to read secure random bytes for webhook token")
	}
	return hex.EncodeToString(b), nil
}
