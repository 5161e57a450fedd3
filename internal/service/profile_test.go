package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/kv"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type failingStore struct {
	*kv.MemoryStore
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func loadedProfile(t *testing.T, store *kv.MemoryStore) *service.Profile {
	t.Helper()
	p := service.NewProfile(store, 0, observability.NewMetrics(), zap.NewNop())
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func storedProfile(t *testing.T, store *kv.MemoryStore) domain.UserProfile {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), service.UserKey)
	if err != nil || !ok {
		t.Fatalf("no stored profile: %v %v", ok, err)
	}
	var u domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("stored profile is not JSON: %v", err)
	}
	return u
}

// --- Tests ---

func TestProfile_LoadFreshStoreCreatesDefault(t *testing.T) {
	store := kv.NewMemoryStore()
	p := loadedProfile(t, store)

	u := p.User()
	if u == nil || u.Name != "Charlene Reed" || u.ID != "user-1" || u.Avatar != nil {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if stored := storedProfile(t, store); stored.Email != "charlenereed@gmail.com" {
		t.Errorf("default profile not persisted: %+v", stored)
	}
	if p.IsLoading() {
		t.Error("loading should be over")
	}
}

func TestProfile_LoadExisting(t *testing.T) {
	store := kv.NewMemoryStore()
	store.Set(context.Background(), service.UserKey, `{"id":"user-1","name":"Jane","username":"jane"}`)

	u := loadedProfile(t, store).User()
	if u.Name != "Jane" || u.City != "" {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestProfile_LoadCorruptReplacesWithDefault(t *testing.T) {
	store := kv.NewMemoryStore()
	store.Set(context.Background(), service.UserKey, "{not json")

	u := loadedProfile(t, store).User()
	if u == nil || u.Name != "Charlene Reed" {
		t.Fatalf("expected default profile, got %+v", u)
	}
	if stored := storedProfile(t, store); stored.ID != "user-1" {
		t.Error("corrupt value should be overwritten")
	}
}

func TestProfile_LoadStoreError(t *testing.T) {
	store := &failingStore{MemoryStore: kv.NewMemoryStore(), getErr: errors.New("quota")}
	p := service.NewProfile(store, 0, observability.NewMetrics(), zap.NewNop())

	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if p.User() != nil || p.IsLoaded() || p.IsLoading() {
		t.Errorf("unexpected state: %+v", p.State())
	}
}

func TestProfile_StartIsLoading(t *testing.T) {
	p := service.NewProfile(kv.NewMemoryStore(), 30*time.Millisecond, observability.NewMetrics(), zap.NewNop())

	p.Start(context.Background())
	if !p.State().IsLoading {
		t.Fatal("expected loading right after Start")
	}
	waitFor(t, p.IsLoaded)
	waitFor(t, func() bool { return !p.IsLoading() })
}

func TestProfile_UpdateUserMergesFields(t *testing.T) {
	store := kv.NewMemoryStore()
	p := loadedProfile(t, store)

	name := "John Doe"
	if err := p.UpdateUser(context.Background(), domain.ProfilePatch{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := domain.DefaultProfile()
	want.Name = "John Doe"
	got := p.User()
	if got.Name != want.Name || got.Email != want.Email || got.City != want.City ||
		got.PostalCode != want.PostalCode || got.Username != want.Username {
		t.Errorf("unexpected merge: %+v", got)
	}
	if stored := storedProfile(t, store); stored.Name != "John Doe" || stored.Country != "usa" {
		t.Errorf("merge not persisted: %+v", stored)
	}
}

func TestProfile_UpdateBeforeLoadIsNoop(t *testing.T) {
	store := kv.NewMemoryStore()
	metrics := observability.NewMetrics()
	p := service.NewProfile(store, 0, metrics, zap.NewNop())

	name := "x"
	if err := p.UpdateUser(context.Background(), domain.ProfilePatch{Name: &name}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), service.UserKey); ok {
		t.Error("no-op update must not write")
	}
	if p.User() != nil {
		t.Error("no-op update must not create a profile")
	}
}

func TestProfile_UpdateStoreFailureKeepsMemory(t *testing.T) {
	store := &failingStore{MemoryStore: kv.NewMemoryStore()}
	p := service.NewProfile(store, 0, observability.NewMetrics(), zap.NewNop())
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	store.setErr = errors.New("disk full")
	name := "John Doe"
	if err := p.UpdateUser(context.Background(), domain.ProfilePatch{Name: &name}); err == nil {
		t.Fatal("expected error")
	}
	if p.User().Name != "Charlene Reed" {
		t.Error("memory must be unchanged after a failed write")
	}
}

func TestProfile_PasswordIsHashed(t *testing.T) {
	store := kv.NewMemoryStore()
	p := loadedProfile(t, store)

	pw := "Str0ng!pass"
	if err := p.UpdateUser(context.Background(), domain.ProfilePatch{Password: &pw}); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, _, _ := store.Get(context.Background(), service.UserKey)
	if strings.Contains(raw, pw) {
		t.Fatal("cleartext password was stored")
	}
	hash := storedProfile(t, store).PasswordHash
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)); err != nil {
		t.Errorf("stored hash does not match: %v", err)
	}
}

func TestProfile_UpdateAvatar(t *testing.T) {
	store := kv.NewMemoryStore()
	p := loadedProfile(t, store)

	if err := p.UpdateAvatar(context.Background(), "image/png", strings.NewReader("png")); err != nil {
		t.Fatalf("update avatar: %v", err)
	}

	want := "data:image/png;base64,cG5n"
	if u := p.User(); u.Avatar == nil || *u.Avatar != want {
		t.Errorf("unexpected avatar: %v", u.Avatar)
	}
	if stored := storedProfile(t, store); stored.Avatar == nil || *stored.Avatar != want {
		t.Error("avatar not persisted")
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestProfile_UpdateAvatarReadFailure(t *testing.T) {
	p := loadedProfile(t, kv.NewMemoryStore())

	if err := p.UpdateAvatar(context.Background(), "image/png", errReader{}); err == nil {
		t.Fatal("expected read error")
	}
	if p.User().Avatar != nil {
		t.Error("state must be unchanged")
	}
}

func TestProfile_ConcurrentUpdatesAreSerialized(t *testing.T) {
	store := kv.NewMemoryStore()
	p := service.NewProfile(store, 5*time.Millisecond, observability.NewMetrics(), zap.NewNop())
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	name, city := "John Doe", "Oakland"
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.UpdateUser(context.Background(), domain.ProfilePatch{Name: &name})
	}()
	go func() {
		defer wg.Done()
		p.UpdateAvatar(context.Background(), "image/gif", strings.NewReader("gif"))
		p.UpdateUser(context.Background(), domain.ProfilePatch{City: &city})
	}()
	wg.Wait()

	stored := storedProfile(t, store)
	if stored.Name != name || stored.City != city || stored.Avatar == nil {
		t.Errorf("lost update: %+v", stored)
	}
}
