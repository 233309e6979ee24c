package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/email"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/user/domain"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	users map[string]*domain.User

	lockedAt   map[string]time.Time
	unlockedID string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*domain.User),
		lockedAt: make(map[string]time.Time),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	if u, _ := f.GetByUsername(ctx, identifier); u != nil {
		return u, nil
	}
	return f.GetByEmail(ctx, identifier)
}

func (f *fakeRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, _ := f.GetByUsername(ctx, username)
	return u != nil, nil
}

func (f *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := f.GetByEmail(ctx, email)
	return u != nil, nil
}

func (f *fakeRepo) Create(_ context.Context, u *domain.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, u *domain.User) error {
	stored, ok := f.users[u.ID]
	if !ok {
		return nil
	}
	roles := stored.Roles
	cp := *u
	cp.Roles = roles
	cp.PasswordHash = stored.PasswordHash
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) Search(_ context.Context, query string, limit, offset int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateFailedLoginAttempts(_ context.Context, id string, attempts int) error {
	f.users[id].FailedLoginAttempts = attempts
	return nil
}

func (f *fakeRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	t := at
	f.users[id].LastLoginAt = &t
	return nil
}

func (f *fakeRepo) Lock(_ context.Context, id string, lockoutTime time.Time) error {
	u := f.users[id]
	u.AccountNonLocked = false
	t := lockoutTime
	u.LockoutTime = &t
	f.lockedAt[id] = lockoutTime
	return nil
}

func (f *fakeRepo) Unlock(_ context.Context, id string) error {
	u := f.users[id]
	u.AccountNonLocked = true
	u.LockoutTime = nil
	u.FailedLoginAttempts = 0
	f.unlockedID = id
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.users[id].PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) UpdateRoles(_ context.Context, id string, roles []rbac.Role) error {
	f.users[id].Roles = roles
	return nil
}

// fakeMail counts verification sends so tests can assert the side effect.
type fakeMail struct {
	email.LogSender
	verificationTo []string
}

func (m *fakeMail) SendVerificationEmail(_ context.Context, to, _ string) error {
	m.verificationTo = append(m.verificationTo, to)
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, security.NewHasher(4), nil, nil, 5)
}

func newTestServiceWithMail(repo *fakeRepo, mail email.Sender) *Service {
	return NewService(repo, security.NewHasher(4), mail, nil, 5)
}

func seedUser(repo *fakeRepo, svc *Service, username, password string) *domain.User {
	hash, _ := svc.hasher.Hash([]byte(password))
	u := &domain.User{
		ID:                    "u-" + username,
		Username:              username,
		Email:                 username + "@example.com",
		PasswordHash:          hash,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		Status:                domain.StatusActive,
		Roles:                 []rbac.Role{rbac.RoleUser},
	}
	repo.users[u.ID] = u
	return u
}

func TestRegisterDefaults(t *testing.T) {
	repo := newFakeRepo()
	mail := &fakeMail{}
	svc := newTestServiceWithMail(repo, mail)

	u, err := svc.Register(context.Background(), RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !u.Enabled {
		t.Errorf("new user should be enabled")
	}
	if u.EmailVerified {
		t.Errorf("new user should not be email-verified")
	}
	if u.Status != domain.StatusPendingVerification {
		t.Errorf("status = %s, want PENDING_VERIFICATION", u.Status)
	}
	if len(u.Roles) != 1 || u.Roles[0] != rbac.RoleUser {
		t.Errorf("roles = %v, want [USER]", u.Roles)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Errorf("password must be stored hashed")
	}
	if repo.users[u.ID] == nil {
		t.Errorf("user was not persisted")
	}
	if len(mail.verificationTo) != 1 || mail.verificationTo[0] != "alice@example.com" {
		t.Errorf("verification emails sent = %v, want exactly one to alice@example.com", mail.verificationTo)
	}
}

func TestRegisterConflictOrder(t *testing.T) {
	repo := newFakeRepo()
	mail := &fakeMail{}
	svc := newTestServiceWithMail(repo, mail)
	seedUser(repo, svc, "alice", "pw")

	// Same username AND same email: the username conflict must win.
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("error = %q, want username conflict reported first", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "alice@example.com", Password: "pw",
	})
	if apperr.KindOf(err) != apperr.KindConflict || !strings.Contains(err.Error(), "email") {
		t.Errorf("error = %v, want email conflict", err)
	}

	if len(mail.verificationTo) != 0 {
		t.Errorf("verification emails sent = %v, want none on conflict", mail.verificationTo)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.Get(context.Background(), "missing")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestVerifyEmailActivatesPendingAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")
	u.Status = domain.StatusPendingVerification

	got, err := svc.VerifyEmail(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !got.EmailVerified {
		t.Errorf("email not marked verified")
	}
	if got.Status != domain.StatusActive {
		t.Errorf("status = %s, want ACTIVE", got.Status)
	}
}

func TestVerifyEmailActivatesRegardlessOfStatus(t *testing.T) {
	for _, status := range []domain.UserStatus{domain.StatusSuspended, domain.StatusInactive} {
		repo := newFakeRepo()
		svc := newTestService(repo)
		u := seedUser(repo, svc, "alice", "pw")
		u.Status = status

		got, err := svc.VerifyEmail(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("VerifyEmail from %s: %v", status, err)
		}
		if got.Status != domain.StatusActive {
			t.Errorf("status after verify from %s = %s, want ACTIVE", status, got.Status)
		}
	}
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "old-pass")

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "new-pass", "new-pass"); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("wrong current password: kind = %v, want invalid argument", apperr.KindOf(err))
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "old-pass", "new-pass", "other"); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("mismatched confirmation: kind = %v, want invalid argument", apperr.KindOf(err))
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "old-pass", "new-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if err := svc.hasher.Compare(repo.users[u.ID].PasswordHash, []byte("new-pass")); err != nil {
		t.Errorf("new password does not verify against stored hash")
	}
}

func TestRecordFailedLoginLocksAtThreshold(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")

	for i := 0; i < 4; i++ {
		if err := svc.RecordFailedLogin(context.Background(), u.ID); err != nil {
			t.Fatalf("RecordFailedLogin: %v", err)
		}
	}
	if _, locked := repo.lockedAt[u.ID]; locked {
		t.Fatalf("account locked before threshold")
	}
	if got := repo.users[u.ID].FailedLoginAttempts; got != 4 {
		t.Fatalf("attempts = %d, want 4", got)
	}

	if err := svc.RecordFailedLogin(context.Background(), u.ID); err != nil {
		t.Fatalf("RecordFailedLogin: %v", err)
	}
	if _, locked := repo.lockedAt[u.ID]; !locked {
		t.Errorf("account not locked at threshold")
	}
	if repo.users[u.ID].AccountNonLocked {
		t.Errorf("AccountNonLocked still set after lock")
	}
}

func TestRecordSuccessfulLoginResetsAttempts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")
	repo.users[u.ID].FailedLoginAttempts = 3

	if err := svc.RecordSuccessfulLogin(context.Background(), u.ID); err != nil {
		t.Fatalf("RecordSuccessfulLogin: %v", err)
	}
	if got := repo.users[u.ID].FailedLoginAttempts; got != 0 {
		t.Errorf("attempts = %d, want 0", got)
	}
	if repo.users[u.ID].LastLoginAt == nil {
		t.Errorf("last login not stamped")
	}
}

func TestUnlockClearsLockState(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")

	if err := svc.Lock(context.Background(), u.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := svc.Unlock(context.Background(), u.ID); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	got := repo.users[u.ID]
	if !got.AccountNonLocked || got.LockoutTime != nil || got.FailedLoginAttempts != 0 {
		t.Errorf("lock state not fully cleared: %+v", got)
	}
}

func TestSetEnabled(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")

	got, err := svc.SetEnabled(context.Background(), u.ID, false)
	if err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if got.Enabled || got.Status != domain.StatusInactive {
		t.Errorf("disable: enabled=%v status=%s, want disabled INACTIVE", got.Enabled, got.Status)
	}

	got, err = svc.SetEnabled(context.Background(), u.ID, true)
	if err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if !got.Enabled || got.Status != domain.StatusActive {
		t.Errorf("enable: enabled=%v status=%s, want enabled ACTIVE", got.Enabled, got.Status)
	}
}

func TestUpdateRoles(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")

	if _, err := svc.UpdateRoles(context.Background(), u.ID, []string{"ADMIN", "WIZARD"}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("unknown role: kind = %v, want invalid argument", apperr.KindOf(err))
	}

	got, err := svc.UpdateRoles(context.Background(), u.ID, []string{"ADMIN", "MANAGER"})
	if err != nil {
		t.Fatalf("UpdateRoles: %v", err)
	}
	if len(got.Roles) != 2 {
		t.Fatalf("roles = %v, want 2 roles", got.Roles)
	}

	// Empty set is allowed and removes all roles.
	got, err = svc.UpdateRoles(context.Background(), u.ID, nil)
	if err != nil {
		t.Fatalf("UpdateRoles empty: %v", err)
	}
	if len(got.Roles) != 0 {
		t.Errorf("roles = %v, want empty", got.Roles)
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	u := seedUser(repo, svc, "alice", "pw")
	seedUser(repo, svc, "bob", "pw")

	_, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Email: "bob@example.com"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", apperr.KindOf(err))
	}

	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Email: "new@example.com", FirstName: "Alice"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Email != "new@example.com" || got.EmailVerified {
		t.Errorf("email change must reset verification: %+v", got)
	}
}
