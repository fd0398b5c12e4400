package middleware

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

type contextKey string

// CallerContextKey carries the authenticated caller id.
const CallerContextKey contextKey = "caller"

// Auth headers for backend callers.
const (
	HeaderCaller    = "X-Notify-Caller"
	HeaderNonce     = "X-Notify-Nonce"
	HeaderTimestamp = "X-Notify-Timestamp"
	HeaderSignature = "X-Notify-Signature"
)

// NonceStore tracks used nonces for replay protection.
type NonceStore interface {
	IsNonceUsed(ctx context.Context, callerID, nonce string) bool
	MarkNonceUsed(ctx context.Context, callerID, nonce string, ttl time.Duration)
}

// AuthMiddleware verifies Ed25519 request signatures from a fixed set of
// backend callers. Callers are configured, not self-registered.
type AuthMiddleware struct {
	keys   map[string]ed25519.PublicKey
	nonces NonceStore
	window time.Duration
}

// NewAuthMiddleware builds the middleware from callerID -> base64 public
// key config entries. Invalid keys are rejected up front.
func NewAuthMiddleware(callerKeys map[string]string, nonces NonceStore) (*AuthMiddleware, error) {
	keys := make(map[string]ed25519.PublicKey, len(callerKeys))
	for id, b64 := range callerKeys {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("caller %s: invalid public key: %w", id, err)
		}
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("caller %s: public key must be %d bytes", id, ed25519.PublicKeySize)
		}
		keys[id] = ed25519.PublicKey(raw)
	}
	return &AuthMiddleware{
		keys:   keys,
		nonces: nonces,
		window: 30 * time.Second,
	}, nil
}

// SignaturePayload builds the byte string callers sign:
// sha256hex(body) + "|" + nonce + "|" + timestampMs.
func SignaturePayload(bodyHash, nonce string, timestampMs int64) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d", bodyHash, nonce, timestampMs))
}

// RequireAuth verifies signatures on requests. Failures surface as the
// structured "failed-precondition" error so clients can re-authenticate.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID := r.Header.Get(HeaderCaller)
		nonce := r.Header.Get(HeaderNonce)
		timestamp := r.Header.Get(HeaderTimestamp)
		signature := r.Header.Get(HeaderSignature)

		if callerID == "" || nonce == "" || timestamp == "" || signature == "" {
			authError(w, "missing auth headers")
			return
		}

		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			authError(w, "invalid timestamp format")
			return
		}
		if !m.isTimestampValid(ts) {
			authError(w, "timestamp expired or too far in future")
			return
		}

		if len(nonce) < 24 {
			authError(w, "nonce must be at least 24 characters")
			return
		}
		if m.nonces.IsNonceUsed(r.Context(), callerID, nonce) {
			authError(w, "nonce already used")
			return
		}

		pubkey, ok := m.keys[callerID]
		if !ok {
			authError(w, "unknown caller")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			authError(w, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewBuffer(body)) // reset for handler

		sig, err := base64.StdEncoding.DecodeString(signature)
		if err != nil {
			authError(w, "invalid signature encoding")
			return
		}

		signed := SignaturePayload(sha256Hex(body), nonce, ts)
		if !ed25519.Verify(pubkey, signed, sig) {
			authError(w, "invalid signature")
			return
		}

		m.nonces.MarkNonceUsed(r.Context(), callerID, nonce, 3*time.Minute)

		ctx := context.WithValue(r.Context(), CallerContextKey, callerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) isTimestampValid(ts int64) bool {
	now := time.Now().UnixMilli()
	windowMs := m.window.Milliseconds()
	// Only accept timestamps from the past, within the window.
	return ts > now-windowMs && ts <= now
}

func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func authError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"kind":    "failed-precondition",
			"message": message,
		},
	})
}

// GetCallerFromContext retrieves the authenticated caller id, or "".
func GetCallerFromContext(ctx context.Context) string {
	caller, _ := ctx.Value(CallerContextKey).(string)
	return caller
}
