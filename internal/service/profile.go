package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/infra/resilience"
	"github.com/boddenberg/finboard-bfa/internal/port"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserKey is the store key holding the JSON profile.
const UserKey = "user"

const bcryptCost = bcrypt.DefaultCost

// Profile owns the singleton user profile and its persistence.
type Profile struct {
	store   port.KVStore
	delay   time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger

	// writeMu serializes read-modify-write cycles of the stored profile.
	writeMu sync.Mutex

	mu      sync.RWMutex
	user    *domain.UserProfile
	loading bool
	closed  bool
}

// NewProfile creates the profile provider. delay simulates the latency of a
// remote profile API on load and on every update.
func NewProfile(store port.KVStore, delay time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Profile {
	return &Profile{
		store:   store,
		delay:   delay,
		metrics: metrics,
		logger:  logger,
	}
}

// Start marks the provider as loading and loads the profile in the background.
func (p *Profile) Start(ctx context.Context) {
	p.setLoading(true)
	go func() {
		_ = p.Load(ctx)
	}()
}

// Load reads the stored profile, or creates the default one when the store
// holds none. A stored value that cannot be decoded is replaced by the default.
func (p *Profile) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Profile.Load")
	defer span.End()

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.setLoading(true)
	defer p.setLoading(false)

	if err := resilience.Wait(ctx, p.delay); err != nil {
		return err
	}

	raw, found, err := p.store.Get(ctx, UserKey)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to load user data", zap.Error(err))
		return fmt.Errorf("load profile: %w", err)
	}

	if found {
		var user domain.UserProfile
		err := json.Unmarshal([]byte(raw), &user)
		if err == nil {
			p.adopt(&user)
			return nil
		}
		p.logger.Warn("stored profile is corrupt, replacing with default", zap.Error(err))
	}

	user := domain.DefaultProfile()
	p.adopt(&user)
	if err := p.persist(ctx, &user); err != nil {
		p.logger.Error("failed to store default profile", zap.Error(err))
	}
	return nil
}

// UpdateUser merges the non-nil fields of patch into the profile, persists
// it, and only then updates the in-memory copy. Before the profile is
// loaded it does nothing.
func (p *Profile) UpdateUser(ctx context.Context, patch domain.ProfilePatch) error {
	ctx, span := tracer.Start(ctx, "Profile.UpdateUser")
	defer span.End()

	if !p.IsLoaded() {
		p.metrics.IncrProfileWrite("noop")
		p.logger.Warn("profile update ignored, profile not loaded")
		return nil
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	current := p.User()

	if err := resilience.Wait(ctx, p.delay); err != nil {
		return err
	}

	merged, err := applyPatch(*current, patch)
	if err != nil {
		p.metrics.IncrProfileWrite("error")
		return err
	}

	start := time.Now()
	err = p.persist(ctx, &merged)
	p.metrics.RecordRequestDuration("profile_write", time.Since(start))
	if err != nil {
		span.RecordError(err)
		p.metrics.IncrProfileWrite("error")
		p.logger.Error("failed to update user data", zap.Error(err))
		return fmt.Errorf("update profile: %w", err)
	}

	p.adopt(&merged)
	p.metrics.IncrProfileWrite("success")
	return nil
}

// UpdateAvatar stores the image read from r as a base64 data URL.
func (p *Profile) UpdateAvatar(ctx context.Context, contentType string, r io.Reader) error {
	img, err := io.ReadAll(r)
	if err != nil {
		p.logger.Error("failed to read avatar", zap.Error(err))
		return fmt.Errorf("read avatar: %w", err)
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img)
	return p.UpdateUser(ctx, domain.ProfilePatch{Avatar: &dataURL})
}

// User returns a copy of the profile, or nil while it is not loaded.
func (p *Profile) User() *domain.UserProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil
	}
	u := copyProfile(*p.user)
	return &u
}

func (p *Profile) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// IsLoaded reports whether a profile is available for reads and updates.
func (p *Profile) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user != nil
}

// State is the read surface served to the UI.
func (p *Profile) State() domain.ProfileState {
	return domain.ProfileState{User: p.User(), IsLoading: p.IsLoading()}
}

// Close stops the provider from adopting results of operations still in flight.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Profile) adopt(user *domain.UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.user = user
}

func (p *Profile) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}

func (p *Profile) persist(ctx context.Context, user *domain.UserProfile) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return p.store.Set(ctx, UserKey, string(b))
}

func applyPatch(u domain.UserProfile, patch domain.ProfilePatch) (domain.UserProfile, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, patch.Name)
	set(&u.Username, patch.Username)
	set(&u.Email, patch.Email)
	set(&u.DateOfBirth, patch.DateOfBirth)
	set(&u.PresentAddress, patch.PresentAddress)
	set(&u.PermanentAddress, patch.PermanentAddress)
	set(&u.City, patch.City)
	set(&u.PostalCode, patch.PostalCode)
	set(&u.Country, patch.Country)

	if patch.Avatar != nil {
		avatar := *patch.Avatar
		u.Avatar = &avatar
	}

	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcryptCost)
		if err != nil {
			return u, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	return u, nil
}

func copyProfile(u domain.UserProfile) domain.UserProfile {
	if u.Avatar != nil {
		avatar := *u.Avatar
		u.Avatar = &avatar
	}
	return u
}
