package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the billing endpoints with a scripted status sequence.
type fakeBackend struct {
	mu       sync.Mutex
	statuses []string
	polls    int
	creates  int
	refresh  int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/planos":
		_, _ = io.WriteString(w, `{"data":[{"id":7,"name":"Pro","price":"100.00"}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/cupons/name/PROMO20":
		_, _ = io.WriteString(w, `{"active":true,"discountValue":20}`)
	case r.Method == http.MethodGet && r.URL.Path == "/cupons/name/NOPE":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/assinaturas/simple":
		b.creates++
		_, _ = io.WriteString(w, `{"data":{"id":"sub_1"}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/assinaturas/minha":
		status := "PENDING"
		if b.polls < len(b.statuses) {
			status = b.statuses[b.polls]
		}
		b.polls++
		_, _ = io.WriteString(w, `{"data":{"id":"sub_1","status":"`+status+`"}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/me":
		b.refresh++
		_, _ = io.WriteString(w, `{"data":{}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) counts() (creates, polls, refresh int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates, b.polls, b.refresh
}

func setupEnv(t *testing.T, backend *fakeBackend) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	t.Setenv("CLINIC_API_URL", srv.URL)
	t.Setenv("CLINIC_API_TOKEN", "test")
	t.Setenv("CHECKOUT_POLL_INTERVAL", "10ms")
	t.Setenv("CHECKOUT_GUARD", "memory")
	t.Setenv("CHECKOUT_LOCALE", "en")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "error")
}

func run(args ...string) error {
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestPlansCommand(t *testing.T) {
	setupEnv(t, &fakeBackend{})
	assert.NoError(t, run("plans"))
}

func TestQuoteCommand(t *testing.T) {
	setupEnv(t, &fakeBackend{})

	assert.NoError(t, run("quote", "--plan", "7", "--coupon", "promo20"))

	err := run("quote", "--plan", "7", "--coupon", "NOPE")
	require.Error(t, err)
	assert.Equal(t, "Coupon not found.", err.Error())

	assert.Error(t, run("quote", "--plan", "99"))
}

func TestCheckoutCommand(t *testing.T) {
	args := []string{
		"checkout", "--plan", "7", "--coupon", "PROMO20",
		"--holder", "Ana Souza", "--number", "4111 1111 1111 1111",
		"--expiry", "08/30", "--ccv", "123",
	}

	t.Run("activated", func(t *testing.T) {
		backend := &fakeBackend{statuses: []string{"PENDING", "ACTIVE"}}
		setupEnv(t, backend)

		require.NoError(t, run(args...))
		creates, polls, refresh := backend.counts()
		assert.Equal(t, 1, creates)
		assert.Equal(t, 2, polls)
		assert.Equal(t, 1, refresh)
	})

	t.Run("timed out", func(t *testing.T) {
		backend := &fakeBackend{}
		setupEnv(t, backend)

		err := run(args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed_out")
		_, polls, _ := backend.counts()
		assert.Equal(t, 3, polls)
	})

	t.Run("bad expiry", func(t *testing.T) {
		backend := &fakeBackend{}
		setupEnv(t, backend)

		bad := append([]string(nil), args...)
		bad[len(bad)-3] = "2030-08"
		assert.Error(t, run(bad...))
		creates, _, _ := backend.counts()
		assert.Zero(t, creates)
	})
}
