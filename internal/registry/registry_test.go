package registry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seahorse/internal/domain"
	"seahorse/internal/registry"
	"seahorse/internal/util/logging"
)

type backend interface {
	domain.Registry
	domain.AccountClearer
}

func backends(t *testing.T) map[string]backend {
	t.Helper()

	db, err := registry.OpenBadger("", logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	disk, err := registry.OpenBadger(t.TempDir(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	srv := httptest.NewServer(registry.NewServer(registry.NewMemory(), registry.WithServerLogger(logging.Discard())))
	t.Cleanup(srv.Close)

	return map[string]backend{
		"memory":      registry.NewMemory(),
		"badger":      db,
		"badger-disk": disk,
		"http":        registry.NewHTTPClient(srv.URL, time.Second),
	}
}

func request(from, to domain.AccountID, st domain.RequestStatus) domain.FriendRequest {
	return domain.FriendRequest{
		From:         from,
		To:           to,
		PublicKey:    "pk-" + from.String(),
		EncryptedKey: "ek",
		Status:       st,
	}
}

func TestRegistry_Requests(t *testing.T) {
	ctx := context.Background()
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := reg.GetFriendRequest(ctx, "alice-bob")
			require.NoError(t, err)
			require.False(t, ok)

			ab := request("alice", "bob", domain.StatusPending)
			require.NoError(t, reg.PutFriendRequest(ctx, "alice-bob", ab))
			require.NoError(t, reg.PutFriendRequest(ctx, "carol-alice", request("carol", "alice", domain.StatusAccepted)))
			require.NoError(t, reg.PutFriendRequest(ctx, "bob-dave", request("bob", "dave", domain.StatusPending)))

			got, ok, err := reg.GetFriendRequest(ctx, "alice-bob")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, ab, got)

			ab.Status = domain.StatusAccepted
			ab.RecipientKey = "pk-bob"
			ab.RecipientEncryptedKey = "rek"
			require.NoError(t, reg.PutFriendRequest(ctx, "alice-bob", ab))
			got, _, err = reg.GetFriendRequest(ctx, "alice-bob")
			require.NoError(t, err)
			require.Equal(t, ab, got)

			all, err := reg.ListFriendRequests(ctx, domain.RequestFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)

			involving, err := reg.ListFriendRequests(ctx, domain.RequestFilter{Involving: "alice", Status: domain.StatusAccepted})
			require.NoError(t, err)
			require.Len(t, involving, 2)

			toDave, err := reg.ListFriendRequests(ctx, domain.RequestFilter{To: "dave", Status: domain.StatusPending})
			require.NoError(t, err)
			require.Equal(t, []domain.FriendRequest{request("bob", "dave", domain.StatusPending)}, toDave)

			none, err := reg.ListFriendRequests(ctx, domain.RequestFilter{From: "zed"})
			require.NoError(t, err)
			require.Empty(t, none)

			require.NoError(t, reg.DeleteFriendRequest(ctx, "alice-bob"))
			require.NoError(t, reg.DeleteFriendRequest(ctx, "alice-bob"))
			_, ok, err = reg.GetFriendRequest(ctx, "alice-bob")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestRegistry_Slots(t *testing.T) {
	ctx := context.Background()
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := reg.GetEncryptedSlot(ctx, "alice")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, reg.PutEncryptedSlot(ctx, "alice", `{"version":1}`))
			require.NoError(t, reg.PutEncryptedSlot(ctx, "alice", `{"version":1,"iv":"x"}`))

			got, ok, err := reg.GetEncryptedSlot(ctx, "alice")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"version":1,"iv":"x"}`, got)

			require.NoError(t, reg.DeleteEncryptedSlot(ctx, "alice"))
			_, ok, err = reg.GetEncryptedSlot(ctx, "alice")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestRegistry_ClearAccount(t *testing.T) {
	ctx := context.Background()
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, reg.PutFriendRequest(ctx, "alice-bob", request("alice", "bob", domain.StatusAccepted)))
			require.NoError(t, reg.PutFriendRequest(ctx, "carol-alice", request("carol", "alice", domain.StatusPending)))
			require.NoError(t, reg.PutFriendRequest(ctx, "bob-carol", request("bob", "carol", domain.StatusPending)))
			require.NoError(t, reg.PutEncryptedSlot(ctx, "alice", "a"))
			require.NoError(t, reg.PutEncryptedSlot(ctx, "bob", "b"))

			require.NoError(t, reg.ClearAccount(ctx, "alice"))

			left, err := reg.ListFriendRequests(ctx, domain.RequestFilter{})
			require.NoError(t, err)
			require.Equal(t, []domain.FriendRequest{request("bob", "carol", domain.StatusPending)}, left)

			_, ok, err := reg.GetEncryptedSlot(ctx, "alice")
			require.NoError(t, err)
			require.False(t, ok)
			_, ok, err = reg.GetEncryptedSlot(ctx, "bob")
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestServer_RejectsMismatchedID(t *testing.T) {
	srv := httptest.NewServer(registry.NewServer(registry.NewMemory(), registry.WithServerLogger(logging.Discard())))
	defer srv.Close()
	c := registry.NewHTTPClient(srv.URL, time.Second)

	err := c.PutFriendRequest(context.Background(), "mallory-bob", request("alice", "bob", domain.StatusPending))
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), "alice-bob")
}

func TestServer_RejectsUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(registry.NewServer(registry.NewMemory(), registry.WithServerLogger(logging.Discard())))
	defer srv.Close()

	body := `{"from":"alice","to":"bob","publicKey":"p","encryptedKey":"k","status":"maybe"}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/requests/alice-bob", strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/requests?status=maybe")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := httptest.NewServer(registry.NewServer(registry.NewMemory(), registry.WithServerLogger(logging.Discard())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(b), `seahorse_registry_http_requests_total{code="200",route="GET /healthz"} 1`)
}

func TestServer_ClearUnsupported(t *testing.T) {
	srv := httptest.NewServer(registry.NewServer(plainRegistry{registry.NewMemory()}, registry.WithServerLogger(logging.Discard())))
	defer srv.Close()

	err := registry.NewHTTPClient(srv.URL, time.Second).ClearAccount(context.Background(), "alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "501")
}

// plainRegistry hides the AccountClearer of its embedded backend.
type plainRegistry struct{ domain.Registry }

func TestHTTPClient_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := registry.NewHTTPClient(slow.URL, 50*time.Millisecond)
	_, _, err := c.GetEncryptedSlot(context.Background(), "alice")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_SendsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(registry.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, registry.NewHTTPClient(srv.URL, time.Second).DeleteEncryptedSlot(context.Background(), "alice"))
	require.Len(t, got, 36)
}

func TestHTTPClient_404OnlyMeansAbsentForLookups(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx := context.Background()
	c := registry.NewHTTPClient(srv.URL, time.Second)
	id := domain.RequestID("alice-bob")

	_, found, err := c.GetFriendRequest(ctx, id)
	require.NoError(t, err)
	require.False(t, found)
	_, found, err = c.GetEncryptedSlot(ctx, "alice")
	require.NoError(t, err)
	require.False(t, found)

	require.ErrorContains(t, c.PutFriendRequest(ctx, id, domain.FriendRequest{From: "alice", To: "bob"}), "404")
	require.ErrorContains(t, c.DeleteFriendRequest(ctx, id), "404")
	require.ErrorContains(t, c.PutEncryptedSlot(ctx, "alice", "{}"), "404")
	require.ErrorContains(t, c.DeleteEncryptedSlot(ctx, "alice"), "404")
	require.ErrorContains(t, c.ClearAccount(ctx, "alice"), "404")

	list, err := c.ListFriendRequests(ctx, domain.RequestFilter{Involving: "alice"})
	require.ErrorContains(t, err, "404")
	require.Nil(t, list)
}
