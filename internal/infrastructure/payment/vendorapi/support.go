package vendorapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/shared/logger"
)

// Options is what the factory hands every adapter constructor.
type Options struct {
	Credentials paymentgateway.CredentialSource
	// BaseURL replaces both the sandbox and live endpoints when set.
	BaseURL  string
	TestMode bool
	Timeout  time.Duration
	Logger   logger.Interface
}

func (o Options) Log() logger.Interface {
	if o.Logger == nil {
		return logger.NewNopLogger()
	}
	return o.Logger
}

// Mode is the sandbox switch. The registry flips it at runtime while
// requests are in flight.
type Mode struct {
	test atomic.Bool
}

func (m *Mode) SetTestMode(testMode bool) { m.test.Store(testMode) }
func (m *Mode) IsTestMode() bool          { return m.test.Load() }

// Endpoint picks override, else the sandbox or live URL for the mode.
func (m *Mode) Endpoint(override, sandbox, live string) string {
	if override != "" {
		return override
	}
	if m.IsTestMode() {
		return sandbox
	}
	return live
}

// SessionID is a fresh opaque id for demo checkouts and vendor
// idempotency keys.
func SessionID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func HMACSHA256(secret string, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// VerifyHex compares a hex-encoded signature in constant time.
func VerifyHex(expected []byte, got string) bool {
	decoded, err := hex.DecodeString(strings.TrimSpace(got))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, decoded)
}

// VerifyBase64 compares a base64-encoded signature in constant time.
func VerifyBase64(expected []byte, got string) bool {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(got))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, decoded)
}

// UnixTime converts vendor epoch seconds, treating 0 as absent.
func UnixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// ParseTime parses an RFC 3339 vendor timestamp, returning nil when s is
// empty or malformed.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// Metadata copies m and adds extra pairs on top.
func Metadata(m map[string]string, extra ...string) map[string]string {
	out := make(map[string]string, len(m)+len(extra)/2)
	for k, v := range m {
		out[k] = v
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if extra[i+1] != "" {
			out[extra[i]] = extra[i+1]
		}
	}
	return out
}
