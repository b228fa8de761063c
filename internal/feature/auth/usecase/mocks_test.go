package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

// mockAccountRepository is a mock implementation of AccountRepository.
// Unset functions return ErrAccountNotFound for lookups and nil for writes.
type mockAccountRepository struct {
	CreateFunc                   func(a *entity.Account) error
	EnsureAggregateFunc          func(a *entity.Account) error
	FindByIDFunc                 func(id uint) (*entity.Account, error)
	FindByEmailFunc              func(email string) (*entity.Account, error)
	FindByUsernameFunc           func(username string) (*entity.Account, error)
	FindByEmailOrUsernameFunc    func(identifier string) (*entity.Account, error)
	EmailTakenFunc               func(email string, exceptID uint) (bool, error)
	UsernameTakenFunc            func(username string, exceptID uint) (bool, error)
	UpdateProfileFieldsFunc      func(id uint, patch entity.AccountPatch) error
	UpdatePasswordFunc           func(id uint, hash string) error
	SetActiveFunc                func(id uint, active bool) error
	FindVerificationByTokenFunc  func(token string) (*entity.EmailVerification, error)
	SaveVerificationTokenFunc    func(id uint, token string, expiresAt time.Time) error
	ConsumeVerificationTokenFunc func(id uint, token string) error
	MarkEmailVerifiedFunc        func(id uint) error
	FindResetByTokenFunc         func(token string) (*entity.PasswordReset, error)
	SaveResetTokenFunc           func(id uint, token string, expiresAt time.Time) error
	ConsumeResetTokenFunc        func(id uint, token string, at time.Time) error
	ClearResetTokenFunc          func(id uint) error
}

func (m *mockAccountRepository) Create(_ context.Context, a *entity.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(a)
	}
	a.ID = 1
	return nil
}

func (m *mockAccountRepository) EnsureAggregate(_ context.Context, a *entity.Account) error {
	if m.EnsureAggregateFunc != nil {
		return m.EnsureAggregateFunc(a)
	}
	return nil
}

func (m *mockAccountRepository) FindByID(_ context.Context, id uint) (*entity.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(username)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByEmailOrUsername(_ context.Context, identifier string) (*entity.Account, error) {
	if m.FindByEmailOrUsernameFunc != nil {
		return m.FindByEmailOrUsernameFunc(identifier)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepository) EmailTaken(_ context.Context, email string, exceptID uint) (bool, error) {
	if m.EmailTakenFunc != nil {
		return m.EmailTakenFunc(email, exceptID)
	}
	return false, nil
}

func (m *mockAccountRepository) UsernameTaken(_ context.Context, username string, exceptID uint) (bool, error) {
	if m.UsernameTakenFunc != nil {
		return m.UsernameTakenFunc(username, exceptID)
	}
	return false, nil
}

func (m *mockAccountRepository) UpdateProfileFields(_ context.Context, id uint, patch entity.AccountPatch) error {
	if m.UpdateProfileFieldsFunc != nil {
		return m.UpdateProfileFieldsFunc(id, patch)
	}
	return nil
}

func (m *mockAccountRepository) UpdatePassword(_ context.Context, id uint, hash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(id, hash)
	}
	return nil
}

func (m *mockAccountRepository) SetActive(_ context.Context, id uint, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(id, active)
	}
	return nil
}

func (m *mockAccountRepository) FindVerificationByToken(_ context.Context, token string) (*entity.EmailVerification, error) {
	if m.FindVerificationByTokenFunc != nil {
		return m.FindVerificationByTokenFunc(token)
	}
	return nil, domain.ErrTokenNotFound
}

func (m *mockAccountRepository) SaveVerificationToken(_ context.Context, id uint, token string, expiresAt time.Time) error {
	if m.SaveVerificationTokenFunc != nil {
		return m.SaveVerificationTokenFunc(id, token, expiresAt)
	}
	return nil
}

func (m *mockAccountRepository) ConsumeVerificationToken(_ context.Context, id uint, token string) error {
	if m.ConsumeVerificationTokenFunc != nil {
		return m.ConsumeVerificationTokenFunc(id, token)
	}
	return nil
}

func (m *mockAccountRepository) MarkEmailVerified(_ context.Context, id uint) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(id)
	}
	return nil
}

func (m *mockAccountRepository) FindResetByToken(_ context.Context, token string) (*entity.PasswordReset, error) {
	if m.FindResetByTokenFunc != nil {
		return m.FindResetByTokenFunc(token)
	}
	return nil, domain.ErrTokenNotFound
}

func (m *mockAccountRepository) SaveResetToken(_ context.Context, id uint, token string, expiresAt time.Time) error {
	if m.SaveResetTokenFunc != nil {
		return m.SaveResetTokenFunc(id, token, expiresAt)
	}
	return nil
}

func (m *mockAccountRepository) ConsumeResetToken(_ context.Context, id uint, token string, at time.Time) error {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(id, token, at)
	}
	return nil
}

func (m *mockAccountRepository) ClearResetToken(_ context.Context, id uint) error {
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(id)
	}
	return nil
}

// mockRoleRepository is a mock implementation of RoleRepository.
type mockRoleRepository struct {
	EnsureRolesFunc    func(roles []entity.RoleName) error
	SetSingleRoleFunc  func(accountID uint, role entity.RoleName) error
	RoleNamesFunc      func(accountID uint) ([]entity.RoleName, error)
	AccountsByRoleFunc func(role entity.RoleName) ([]*entity.Account, error)
}

func (m *mockRoleRepository) EnsureRoles(_ context.Context, roles []entity.RoleName) error {
	if m.EnsureRolesFunc != nil {
		return m.EnsureRolesFunc(roles)
	}
	return nil
}

func (m *mockRoleRepository) SetSingleRole(_ context.Context, accountID uint, role entity.RoleName) error {
	if m.SetSingleRoleFunc != nil {
		return m.SetSingleRoleFunc(accountID, role)
	}
	return nil
}

func (m *mockRoleRepository) RoleNames(_ context.Context, accountID uint) ([]entity.RoleName, error) {
	if m.RoleNamesFunc != nil {
		return m.RoleNamesFunc(accountID)
	}
	return nil, nil
}

func (m *mockRoleRepository) AccountsByRole(_ context.Context, role entity.RoleName) ([]*entity.Account, error) {
	if m.AccountsByRoleFunc != nil {
		return m.AccountsByRoleFunc(role)
	}
	return nil, nil
}

// passthroughTx runs fn directly.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeHasher "hashes" by prefixing, which keeps the tests fast.
type fakeHasher struct {
	verifyCalls int
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty")
	}
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Verify(digest, plain string) bool {
	h.verifyCalls++
	return digest == "hashed:"+plain
}

// mockTokenIssuer returns Token, or a numbered token when Token is empty.
type mockTokenIssuer struct {
	Token string
	Err   error
	n     int
}

func (m *mockTokenIssuer) Issue(ttl time.Duration) (string, time.Time, error) {
	if m.Err != nil {
		return "", time.Time{}, m.Err
	}
	m.n++
	tok := m.Token
	if tok == "" {
		tok = fmt.Sprintf("token-%d", m.n)
	}
	return tok, time.Now().Add(ttl), nil
}

// mockBearerIssuer is a mock implementation of BearerIssuer.
type mockBearerIssuer struct {
	GenerateTokenFunc func(accountID uint, role string) (string, time.Time, error)
}

func (m *mockBearerIssuer) GenerateToken(accountID uint, role string) (string, time.Time, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(accountID, role)
	}
	return "mock-jwt-token", time.Now().Add(time.Hour), nil
}

// mockMailer records sends and fails with Err when set.
type mockMailer struct {
	Err  error
	Sent []sentMail
}

type sentMail struct {
	Template, To, Token string
}

func (m *mockMailer) Send(_ context.Context, template, to, token string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, sentMail{Template: template, To: to, Token: token})
	return nil
}

// mockMediaStore is a mock implementation of MediaStore.
type mockMediaStore struct {
	UploadFunc func(localPath, desiredName string) (string, error)
}

func (m *mockMediaStore) Upload(_ context.Context, localPath, desiredName string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(localPath, desiredName)
	}
	return "/media/" + desiredName, nil
}

// testDeps returns Deps wired with default mocks.
func testDeps(accounts *mockAccountRepository) (Deps, *mockMailer, *fakeHasher) {
	mailer := &mockMailer{}
	hasher := &fakeHasher{}
	return Deps{
		Accounts: accounts,
		Roles:    &mockRoleRepository{},
		Tx:       passthroughTx{},
		Hasher:   hasher,
		Tokens:   &mockTokenIssuer{},
		Bearer:   &mockBearerIssuer{},
		Mailer:   mailer,
		Media:    &mockMediaStore{},
	}, mailer, hasher
}
