package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// VerifySignature recomputes the gateway's HMAC-SHA256 over the canonical
// string "intentID|paymentID" and compares it against the supplied hex
// signature in constant time. This check is the sole basis for trusting
// that a payment succeeded; a success flag from the client is never enough.
//
// The amount is not part of the signed payload, so callers must separately
// confirm the intent's recorded amount against the entity's stored total
// before acting on a true result.
func VerifySignature(intentID, paymentID, suppliedSignature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(suppliedSignature)) == 1
}
