package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/org/nostrvault/internal/storage"
	"github.com/org/nostrvault/pkg/models"
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

func TestGetOrCreatePersistsDefaultOnce(t *testing.T) {
	kv := newMemKV()
	a := NewAccessor(kv)
	ctx := context.Background()

	prof, created, err := a.GetOrCreate(ctx, "pub1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created {
		t.Error("first read should create the profile")
	}
	if prof.Permissions == nil || prof.Relays == nil {
		t.Error("fresh profile should have initialized maps")
	}
	if _, ok := kv.data["pub1"]; !ok {
		t.Error("default profile should be persisted immediately")
	}

	_, created, err = a.GetOrCreate(ctx, "pub1")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if created {
		t.Error("second read should not create again")
	}
}

func TestGetMissingProfile(t *testing.T) {
	a := NewAccessor(newMemKV())

	_, err := a.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
	if !strings.Contains(err.Error(), "absent") {
		t.Errorf("error should name the identity, got %q", err.Error())
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	a := NewAccessor(newMemKV())
	ctx := context.Background()

	prof := models.NewProfile()
	prof.Permissions["site.example"] = models.Grant{Level: 10, Condition: models.ConditionPermanent, CreatedAt: 1234}
	prof.Relays["wss://relay.example"] = models.RelayPolicy{Read: true, Write: true}
	prof.ProtocolHandler = "https://app.example/?q=%s"

	if err := a.Save(ctx, "pub1", prof); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := a.Get(ctx, "pub1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if g := got.Permissions["site.example"]; g.Level != 10 || g.Condition != models.ConditionPermanent || g.CreatedAt != 1234 {
		t.Errorf("unexpected grant after round trip: %+v", g)
	}
	if !got.Relays["wss://relay.example"].Write {
		t.Error("relay policy lost in round trip")
	}
	if got.ProtocolHandler != "https://app.example/?q=%s" {
		t.Errorf("unexpected protocol handler: %q", got.ProtocolHandler)
	}
}

func TestRemove(t *testing.T) {
	a := NewAccessor(newMemKV())
	ctx := context.Background()

	if _, _, err := a.GetOrCreate(ctx, "pub1"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := a.Remove(ctx, "pub1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := a.Get(ctx, "pub1"); !errors.Is(err, ErrNoProfile) {
		t.Errorf("expected ErrNoProfile after Remove, got %v", err)
	}
}
