package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner() *Signer {
	return &Signer{
		Key:        "test-api-key",
		Secret:     "test-api-secret",
		RecvWindow: "5000",
	}
}

func TestHeadersAt_Deterministic(t *testing.T) {
	s := testSigner()
	payload := `{"category":"linear","symbol":"WLDUSDT"}`

	h1 := s.HeadersAt(payload, 1700000000000)
	h2 := s.HeadersAt(payload, 1700000000000)
	assert.Equal(t, h1, h2, "same payload and timestamp must sign identically")

	assert.Equal(t, "test-api-key", h1["X-BAPI-API-KEY"])
	assert.Equal(t, "1700000000000", h1["X-BAPI-TIMESTAMP"])
	assert.Equal(t, "5000", h1["X-BAPI-RECV-WINDOW"])
	require.Len(t, h1["X-BAPI-SIGN"], 64, "hex-encoded SHA-256 digest")
}

func TestHeadersAt_SignatureCoversPayload(t *testing.T) {
	s := testSigner()

	a := s.HeadersAt(`{"qty":"1"}`, 1700000000000)
	b := s.HeadersAt(`{"qty":"2"}`, 1700000000000)
	assert.NotEqual(t, a["X-BAPI-SIGN"], b["X-BAPI-SIGN"])

	c := s.HeadersAt(`{"qty":"1"}`, 1700000000001)
	assert.NotEqual(t, a["X-BAPI-SIGN"], c["X-BAPI-SIGN"])
}

func TestHeadersAt_SignatureCoversSecret(t *testing.T) {
	a := testSigner().HeadersAt("payload", 1700000000000)

	other := testSigner()
	other.Secret = "another-secret"
	b := other.HeadersAt("payload", 1700000000000)

	assert.NotEqual(t, a["X-BAPI-SIGN"], b["X-BAPI-SIGN"])
}

func TestString_RedactsCredentials(t *testing.T) {
	s := testSigner()
	out := s.String()
	assert.NotContains(t, out, "test-api-secret")
	assert.Contains(t, out, "test****")
}
