package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/org/nostrvault/internal/crypto"
	"github.com/org/nostrvault/internal/storage"
)

// memKV is a minimal in-memory storage.Backend for testing.
type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() {}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	sealKey, err := crypto.DeriveStoreKey([]byte("test secret"), crypto.StoreKeyContext)
	if err != nil {
		t.Fatalf("deriving seal key: %v", err)
	}
	srv := NewServer(newMemKV(), sealKey, Config{ListenAddr: ":0"})
	return srv.BuildRouter()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return result
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rr := doJSON(t, h, "GET", "/v1/sys/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCapabilitiesEndpoint(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "GET", "/v1/capabilities?level=20", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	want := "read your public key, read your list of preferred relays, sign events using your private key, encrypt messages to peers and decrypt messages from peers"
	if body["summary"] != want {
		t.Errorf("unexpected summary:\n  expected %q\n  got      %q", want, body["summary"])
	}
	caps, ok := body["capabilities"].([]any)
	if !ok || len(caps) != 5 {
		t.Errorf("expected 5 capabilities, got %v", body["capabilities"])
	}

	rr = doJSON(t, h, "GET", "/v1/capabilities?level=0", nil)
	body = decodeBody(t, rr)
	if body["summary"] != "none" {
		t.Errorf("level 0 summary should be none, got %v", body["summary"])
	}

	rr = doJSON(t, h, "GET", "/v1/capabilities?level=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad level, got %d", rr.Code)
	}
}

func TestPermissionGrantFlow(t *testing.T) {
	h := newTestServer(t)

	// First read auto-creates the profile.
	rr := doJSON(t, h, "GET", "/v1/profiles/pub1/permissions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, "PUT", "/v1/profiles/pub1/permissions/site.example", map[string]any{
		"level":     10,
		"condition": "permanent",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, "GET", "/v1/profiles/pub1/permissions/site.example?cap=signEvent", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["level"] != float64(10) {
		t.Errorf("expected level 10, got %v", body["level"])
	}
	if body["allowed"] != true {
		t.Errorf("signEvent should be allowed at level 10")
	}

	rr = doJSON(t, h, "GET", "/v1/profiles/pub1/permissions/site.example?cap=nip04.decrypt", nil)
	if body := decodeBody(t, rr); body["allowed"] != false {
		t.Errorf("nip04.decrypt should not be allowed at level 10")
	}

	rr = doJSON(t, h, "DELETE", "/v1/profiles/pub1/permissions/site.example", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, h, "GET", "/v1/profiles/pub1/permissions/site.example", nil)
	if body := decodeBody(t, rr); body["level"] != float64(0) {
		t.Errorf("expected level 0 after revoke, got %v", body["level"])
	}
}

func TestPermissionUpdateWithoutProfile(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "PUT", "/v1/profiles/ghost/permissions/site.example", map[string]any{
		"level":     10,
		"condition": "permanent",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ghost") {
		t.Errorf("error should name the identity, got %s", rr.Body.String())
	}
}

func TestPermissionUpdateBadCondition(t *testing.T) {
	h := newTestServer(t)

	doJSON(t, h, "GET", "/v1/profiles/pub1/permissions", nil)
	rr := doJSON(t, h, "PUT", "/v1/profiles/pub1/permissions/site.example", map[string]any{
		"level":     10,
		"condition": "sometimes",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestKeyLifecycle(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/v1/keys", map[string]any{
		"pubkey":      "pub1",
		"name":        "main",
		"private_key": "deadbeefcafe",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, "GET", "/v1/keys", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "deadbeefcafe") {
		t.Error("key listing must not expose private key material")
	}
	body := decodeBody(t, rr)
	keys, ok := body["keys"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected keys payload: %v", body["keys"])
	}
	if _, ok := keys["pub1"]; !ok {
		t.Error("stored key missing from listing")
	}

	rr = doJSON(t, h, "PUT", "/v1/keys/current", map[string]any{"pubkey": "pub1"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = doJSON(t, h, "GET", "/v1/keys/current", nil)
	if body := decodeBody(t, rr); body["pubkey"] != "pub1" {
		t.Errorf("expected current pubkey pub1, got %v", body["pubkey"])
	}

	rr = doJSON(t, h, "DELETE", "/v1/keys/pub1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestKeyAddValidation(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/v1/keys", map[string]any{"pubkey": "pub1"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing private_key should 400, got %d", rr.Code)
	}

	rr = doJSON(t, h, "POST", "/v1/keys", map[string]any{
		"pubkey":      "pub1",
		"private_key": "not-hex!",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-hex private_key should 400, got %d", rr.Code)
	}
}

func TestRelaysRequireProfile(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "PUT", "/v1/profiles/ghost/relays", map[string]any{
		"relays": map[string]any{"wss://relay.example": map[string]bool{"read": true, "write": true}},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 before a profile read, got %d", rr.Code)
	}

	// GET auto-creates the profile; the save then succeeds.
	doJSON(t, h, "GET", "/v1/profiles/ghost/relays", nil)
	rr = doJSON(t, h, "PUT", "/v1/profiles/ghost/relays", map[string]any{
		"relays": map[string]any{"wss://relay.example": map[string]bool{"read": true, "write": true}},
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, "GET", "/v1/profiles/ghost/relays", nil)
	body := decodeBody(t, rr)
	relays, ok := body["relays"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected relays payload: %v", body["relays"])
	}
	if _, ok := relays["wss://relay.example"]; !ok {
		t.Error("saved relay missing")
	}
}
