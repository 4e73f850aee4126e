package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	pkgauth "github.com/casportal/casportal/internal/pkg/auth"
)

type stubProfileStore struct {
	ProfileStore
	profiles map[int64]*models.Profile
	setGroup map[int64]*string
	nextID   int64
}

func (s *stubProfileStore) GetProfileByID(_ context.Context, id int64) (*models.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProfileNotFound
}

func (s *stubProfileStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.nextID++
	p.ID = s.nextID
	if s.profiles == nil {
		s.profiles = map[int64]*models.Profile{}
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *stubProfileStore) TouchLastOnline(context.Context, int64) error { return nil }

func (s *stubProfileStore) SetGroup(_ context.Context, id int64, groupID *string) error {
	if s.setGroup == nil {
		s.setGroup = map[int64]*string{}
	}
	s.setGroup[id] = groupID
	return nil
}

type stubCredentialStore struct {
	CredentialStore
	byEmail  map[string]*models.BasicLogin
	verified []int64
}

func (s *stubCredentialStore) GetBasicLoginByEmail(_ context.Context, email string) (*models.BasicLogin, error) {
	if l, ok := s.byEmail[email]; ok {
		return l, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (s *stubCredentialStore) CreateBasicLogin(_ context.Context, login *models.BasicLogin) error {
	if s.byEmail == nil {
		s.byEmail = map[string]*models.BasicLogin{}
	}
	if _, ok := s.byEmail[login.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	s.byEmail[login.Email] = login
	return nil
}

func (s *stubCredentialStore) MarkVerified(_ context.Context, profileID int64) error {
	s.verified = append(s.verified, profileID)
	return nil
}

func (s *stubCredentialStore) MarkVerificationSent(context.Context, int64) error { return nil }

type stubCodeStore struct {
	ConfirmationCodeStore
	byProfile map[int64]*models.ConfirmationCode
	deleted   []int64
}

func (s *stubCodeStore) GetByProfile(_ context.Context, profileID int64) (*models.ConfirmationCode, error) {
	if c, ok := s.byProfile[profileID]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCodeNotFound
}

func (s *stubCodeStore) GetByCode(_ context.Context, code string) (*models.ConfirmationCode, error) {
	for _, c := range s.byProfile {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperrors.ErrCodeNotFound
}

func (s *stubCodeStore) Replace(_ context.Context, code *models.ConfirmationCode) error {
	if s.byProfile == nil {
		s.byProfile = map[int64]*models.ConfirmationCode{}
	}
	s.byProfile[code.ProfileID] = code
	return nil
}

func (s *stubCodeStore) Delete(_ context.Context, profileID int64) error {
	s.deleted = append(s.deleted, profileID)
	delete(s.byProfile, profileID)
	return nil
}

type stubMailer struct {
	fail bool
	sent []string
}

func (s *stubMailer) SendConfirmationEmail(toEmail, code string) error {
	return s.send(toEmail)
}

func (s *stubMailer) SendRecoveryEmail(toEmail, code string) error {
	return s.send(toEmail)
}

func (s *stubMailer) send(toEmail string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, toEmail)
	return nil
}

func newAuthService(profiles *stubProfileStore, creds *stubCredentialStore, codes *stubCodeStore, mailer *stubMailer) AuthService {
	jwt := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "casportal-test",
		TokenAudience:  "casportal-test",
	})
	return NewAuthService(profiles, creds, codes, mailer, jwt, zerolog.Nop())
}

func dtoLogin(email, password string) *dto.LoginRequest {
	return &dto.LoginRequest{Email: email, Password: password}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := pkgauth.HashPassword("correct-horse")
	require.NoError(t, err)

	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{1: {ID: 1}}}
	creds := &stubCredentialStore{byEmail: map[string]*models.BasicLogin{
		"a@example.com": {ProfileID: 1, Email: "a@example.com", Password: hash},
	}}
	svc := newAuthService(profiles, creds, &stubCodeStore{}, &stubMailer{})

	_, err = svc.Login(context.Background(), dtoLogin("a@example.com", "wrong"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), dtoLogin("a@example.com", "correct-horse"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
}

func TestLoginUnknownEmailIsIndistinct(t *testing.T) {
	svc := newAuthService(&stubProfileStore{}, &stubCredentialStore{}, &stubCodeStore{}, &stubMailer{})
	_, err := svc.Login(context.Background(), dtoLogin("nobody@example.com", "x"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestResendConfirmationCooldown(t *testing.T) {
	creds := &stubCredentialStore{byEmail: map[string]*models.BasicLogin{
		"a@example.com": {ProfileID: 1, Email: "a@example.com"},
	}}
	codes := &stubCodeStore{byProfile: map[int64]*models.ConfirmationCode{
		1: {ProfileID: 1, Code: "live", DateCreated: time.Now().Add(-5 * time.Minute)},
	}}
	mailer := &stubMailer{}
	svc := newAuthService(&stubProfileStore{}, creds, codes, mailer)

	err := svc.ResendConfirmation(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, apperrors.ErrCodeCooldown)
	assert.Empty(t, mailer.sent)
	// the live code stays in place
	assert.Equal(t, "live", codes.byProfile[1].Code)
}

func TestResendConfirmationReplacesExpiredCode(t *testing.T) {
	creds := &stubCredentialStore{byEmail: map[string]*models.BasicLogin{
		"a@example.com": {ProfileID: 1, Email: "a@example.com"},
	}}
	codes := &stubCodeStore{byProfile: map[int64]*models.ConfirmationCode{
		1: {ProfileID: 1, Code: "stale", DateCreated: time.Now().Add(-20 * time.Minute)},
	}}
	mailer := &stubMailer{}
	svc := newAuthService(&stubProfileStore{}, creds, codes, mailer)

	err := svc.ResendConfirmation(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, mailer.sent)
	assert.NotEqual(t, "stale", codes.byProfile[1].Code)
}

func TestIssueCodeRollsBackOnMailFailure(t *testing.T) {
	creds := &stubCredentialStore{byEmail: map[string]*models.BasicLogin{
		"a@example.com": {ProfileID: 1, Email: "a@example.com"},
	}}
	codes := &stubCodeStore{}
	svc := newAuthService(&stubProfileStore{}, creds, codes, &stubMailer{fail: true})

	err := svc.RequestRecovery(context.Background(), "a@example.com")
	require.Error(t, err)
	// the stored code was rolled back so the member can retry at once
	assert.Contains(t, codes.deleted, int64(1))
	assert.Empty(t, codes.byProfile)
}

func TestConfirmEmailExpiredCodeRejected(t *testing.T) {
	creds := &stubCredentialStore{}
	codes := &stubCodeStore{byProfile: map[int64]*models.ConfirmationCode{
		1: {ProfileID: 1, Code: "stale", DateCreated: time.Now().Add(-20 * time.Minute)},
	}}
	svc := newAuthService(&stubProfileStore{}, creds, codes, &stubMailer{})

	err := svc.ConfirmEmail(context.Background(), "stale")
	assert.ErrorIs(t, err, apperrors.ErrCodeNotFound)
	assert.Empty(t, creds.verified)
}

func TestConfirmEmailConsumesCode(t *testing.T) {
	creds := &stubCredentialStore{}
	codes := &stubCodeStore{byProfile: map[int64]*models.ConfirmationCode{
		1: {ProfileID: 1, Code: "fresh", DateCreated: time.Now()},
	}}
	svc := newAuthService(&stubProfileStore{}, creds, codes, &stubMailer{})

	require.NoError(t, svc.ConfirmEmail(context.Background(), "fresh"))
	assert.Equal(t, []int64{1}, creds.verified)
	assert.Contains(t, codes.deleted, int64(1))
}
