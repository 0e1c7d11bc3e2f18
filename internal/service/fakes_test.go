package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/google/uuid"
)

// In-memory repositories for service-level tests. They mirror the store
// semantics the services rely on: sentinel errors, duplicate detection, and
// latest-row selection for OTP records.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if user.Phone != nil && u.Phone != nil && *u.Phone == *user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeUserRepo) Snapshot() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make(map[string]*domain.User, len(f.users))
	for id, u := range f.users {
		cp := *u
		users[id] = &cp
	}
	return users
}

func (f *fakeUserRepo) Restore(snapshot any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = snapshot.(map[string]*domain.User)
}

func (f *fakeUserRepo) SetPhoneVerified(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsPhoneVerified = true
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken // keyed by token hash
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.TokenHash]; ok {
		return repository.ErrDuplicateToken
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()
	cp := *token
	f.tokens[token.TokenHash] = &cp
	return nil
}

func (f *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[tokenHash]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for hash, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, hash)
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for hash, t := range f.tokens {
		if now.After(t.ExpiresAt) {
			delete(f.tokens, hash)
		}
	}
	return nil
}

func (f *fakeTokenRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeOTPRepo struct {
	mu      sync.Mutex
	records []*domain.OTPVerification
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{}
}

func (f *fakeOTPRepo) Create(_ context.Context, otp *domain.OTPVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}
	cp := *otp
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeOTPRepo) GetLatestActive(_ context.Context, userID, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.OTPVerification
	now := time.Now()
	for _, r := range f.records {
		if r.UserID != userID || r.Phone != phone || r.Purpose != purpose {
			continue
		}
		if r.Verified || now.After(r.ExpiresAt) {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeOTPRepo) LatestCreatedAt(_ context.Context, userID, phone string, purpose domain.OTPPurpose) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	found := false
	for _, r := range f.records {
		if r.UserID == userID && r.Phone == phone && r.Purpose == purpose && r.CreatedAt.After(latest) {
			latest = r.CreatedAt
			found = true
		}
	}
	if !found {
		return time.Time{}, repository.ErrNotFound
	}
	return latest, nil
}

func (f *fakeOTPRepo) LatestVerified(_ context.Context, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.OTPVerification
	now := time.Now()
	for _, r := range f.records {
		if r.Phone != phone || r.Purpose != purpose || !r.Verified || now.After(r.ExpiresAt) {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeOTPRepo) IncrementAttempts(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Attempts++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPRepo) MarkVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Verified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context, userID, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.UserID == userID && r.Phone == phone && now.After(r.ExpiresAt) {
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return nil
}

// lastCode returns the code of the most recently created record.
func (f *fakeOTPRepo) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return ""
	}
	return f.records[len(f.records)-1].Code
}

type fakeOAuthProviderRepo struct {
	mu    sync.Mutex
	links []*domain.OAuthProvider
}

func newFakeOAuthProviderRepo() *fakeOAuthProviderRepo {
	return &fakeOAuthProviderRepo{}
}

func (f *fakeOAuthProviderRepo) Create(_ context.Context, provider *domain.OAuthProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.links {
		if p.Provider == provider.Provider && p.ProviderUserID == provider.ProviderUserID {
			return repository.ErrDuplicateOAuthProvider
		}
	}
	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	provider.CreatedAt = time.Now()
	cp := *provider
	f.links = append(f.links, &cp)
	return nil
}

func (f *fakeOAuthProviderRepo) GetByProvider(_ context.Context, provider, providerUserID string) (*domain.OAuthProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.links {
		if p.Provider == provider && p.ProviderUserID == providerUserID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOAuthProviderRepo) GetByUserID(_ context.Context, userID string) ([]*domain.OAuthProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.OAuthProvider
	for _, p := range f.links {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOAuthProviderRepo) Snapshot() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.OAuthProvider(nil), f.links...)
}

func (f *fakeOAuthProviderRepo) Restore(snapshot any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = snapshot.([]*domain.OAuthProvider)
}

type fakeSalonRepo struct {
	mu      sync.Mutex
	salons  []*domain.Salon
	members []*domain.SalonMember
	staff   []*domain.SalonStaff

	failSalon error // returned by CreateSalon when set
}

func newFakeSalonRepo() *fakeSalonRepo {
	return &fakeSalonRepo{}
}

func (f *fakeSalonRepo) CreateSalon(_ context.Context, salon *domain.Salon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSalon != nil {
		return f.failSalon
	}
	if salon.ID == "" {
		salon.ID = uuid.New().String()
	}
	cp := *salon
	f.salons = append(f.salons, &cp)
	return nil
}

func (f *fakeSalonRepo) CreateMember(_ context.Context, member *domain.SalonMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	cp := *member
	f.members = append(f.members, &cp)
	return nil
}

func (f *fakeSalonRepo) CreateStaff(_ context.Context, staff *domain.SalonStaff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	cp := *staff
	f.staff = append(f.staff, &cp)
	return nil
}

type salonState struct {
	salons  []*domain.Salon
	members []*domain.SalonMember
	staff   []*domain.SalonStaff
}

func (f *fakeSalonRepo) Snapshot() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return salonState{
		salons:  append([]*domain.Salon(nil), f.salons...),
		members: append([]*domain.SalonMember(nil), f.members...),
		staff:   append([]*domain.SalonStaff(nil), f.staff...),
	}
}

func (f *fakeSalonRepo) Restore(snapshot any) {
	st := snapshot.(salonState)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salons, f.members, f.staff = st.salons, st.members, st.staff
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles []*domain.CustomerProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{}
}

func (f *fakeProfileRepo) CreateCustomerProfile(_ context.Context, profile *domain.CustomerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	profile.CreatedAt = time.Now()
	cp := *profile
	f.profiles = append(f.profiles, &cp)
	return nil
}

func (f *fakeProfileRepo) Snapshot() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.CustomerProfile(nil), f.profiles...)
}

func (f *fakeProfileRepo) Restore(snapshot any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = snapshot.([]*domain.CustomerProfile)
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.CustomerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]bool
	err    error
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]bool)}
}

func (f *fakeBlacklist) AddToken(_ context.Context, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tokens[token] = true
	return nil
}

func (f *fakeBlacklist) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.tokens[token], nil
}

var errSMSDown = errors.New("sms gateway unavailable")

type fakeSMSSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSMSSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errSMSDown
	}
	f.sent = append(f.sent, to+": "+body)
	return nil
}

// testFixture bundles the fakes behind a Repositories value. WithTx on a
// Repositories without a database handle snapshots every store up front and
// restores them all when the callback fails, so the services under test
// exercise real commit and rollback semantics.
type testFixture struct {
	repos     *repository.Repositories
	users     *fakeUserRepo
	tokens    *fakeTokenRepo
	otps      *fakeOTPRepo
	providers *fakeOAuthProviderRepo
	salons    *fakeSalonRepo
	profiles  *fakeProfileRepo
	blacklist *fakeBlacklist
	sms       *fakeSMSSender
}

func newTestFixture() *testFixture {
	f := &testFixture{
		users:     newFakeUserRepo(),
		tokens:    newFakeTokenRepo(),
		otps:      newFakeOTPRepo(),
		providers: newFakeOAuthProviderRepo(),
		salons:    newFakeSalonRepo(),
		profiles:  newFakeProfileRepo(),
		blacklist: newFakeBlacklist(),
		sms:       &fakeSMSSender{},
	}
	f.repos = &repository.Repositories{
		User:          f.users,
		Token:         f.tokens,
		OTP:           f.otps,
		OAuthProvider: f.providers,
		Salon:         f.salons,
		Profile:       f.profiles,
	}
	return f
}
