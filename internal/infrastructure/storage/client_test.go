package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
)

func newTestClient(gatewayURL string) *Client {
	return NewClient(config.StorageConfig{
		GatewayURL:    gatewayURL,
		SigningSecret: "storage-secret",
		SignTTL:       time.Minute,
	}, zap.NewNop())
}

func TestSignURLRoundTrip(t *testing.T) {
	c := newTestClient("http://storage.internal")

	signed, expiresAt, err := c.SignURL("kyc/user-1/id.jpg", 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signed, "http://storage.internal/objects/"))
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	path, err := c.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "kyc/user-1/id.jpg", path)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	c := newTestClient("http://storage.internal")

	_, err := c.VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestClient("http://storage.internal")
	verifier := NewClient(config.StorageConfig{
		GatewayURL:    "http://storage.internal",
		SigningSecret: "other-secret",
		SignTTL:       time.Minute,
	}, zap.NewNop())

	signed, _, err := issuer.SignURL("kyc/user-1/id.jpg", 0)
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(parsed.Query().Get("token"))
	assert.Error(t, err)
}

func TestPutUploadsToGateway(t *testing.T) {
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.Put(context.Background(), "kyc/user-1/id.jpg", strings.NewReader("bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/objects/")
	assert.Equal(t, "image/jpeg", gotContentType)
}

func TestPutSurfacesGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.Put(context.Background(), "kyc/user-1/id.jpg", strings.NewReader("bytes"), "image/jpeg")
	assert.Error(t, err)
}
