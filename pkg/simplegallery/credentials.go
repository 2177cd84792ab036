package simplegallery

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

// Credential derivation parameters.
const (
	saltLength    = 16
	derivedKeyLen = 32
	pbkdf2Rounds  = 120_000
)

type pbkdf2Deriver struct {
	rounds int
}

// DefaultKeyDeriver returns the production PBKDF2-SHA256 deriver.
func DefaultKeyDeriver() KeyDeriver {
	return &pbkdf2Deriver{rounds: pbkdf2Rounds}
}

func (d *pbkdf2Deriver) DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, d.rounds, derivedKeyLen, sha256.New)
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// RegisterUser validates the username shape, derives a verification key from
// the password and a fresh random salt, and stores the account. The repository
// enforces username uniqueness atomically, so a username claimed while the
// derivation was running is still rejected.
func (s *service) RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error) {
	if !ValidUsername(req.Username) {
		return nil, ErrInvalidUsername
	}
	if _, err := s.repository.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrDuplicateUsername
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:          uuid.New(),
		Username:    req.Username,
		Salt:        salt,
		DerivedHash: s.deriver.DeriveKey(req.Password, salt),
		Role:        RoleUser,
		CreatedAt:   s.timestamp(),
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.eventSink != nil {
		_ = s.eventSink.UserRegistered(ctx, user)
	}

	return user, nil
}

// VerifyUser re-derives the key with the stored salt and compares it in
// constant time. An unknown username and a wrong password both yield
// ErrInvalidCredentials; unknown usernames still burn a full derivation
// against a throwaway salt so response timing does not enumerate accounts.
func (s *service) VerifyUser(ctx context.Context, username, password string) (uuid.UUID, error) {
	user, err := s.repository.GetUserByUsername(ctx, username)
	if err != nil {
		dummy := make([]byte, saltLength)
		s.deriver.DeriveKey(password, dummy)
		return uuid.Nil, ErrInvalidCredentials
	}

	candidate := s.deriver.DeriveKey(password, user.Salt)
	if subtle.ConstantTimeCompare(candidate, user.DerivedHash) != 1 {
		return uuid.Nil, ErrInvalidCredentials
	}

	return user.ID, nil
}

// EnsureBootstrapAdmin guarantees the reserved username holds the admin role.
// An existing account under that name is elevated in place; otherwise a new
// account is registered with the injected provisioning secret. Returns the
// admin account, which may have existed already.
func (s *service) EnsureBootstrapAdmin(ctx context.Context, req BootstrapAdminRequest) (*User, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("bootstrap admin username is required")
	}

	existing, err := s.repository.GetUserByUsername(ctx, req.Username)
	if err == nil {
		if existing.Role == RoleAdmin {
			return existing, nil
		}
		existing.Role = RoleAdmin
		if err := s.repository.UpdateUser(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if req.Secret == "" {
		return nil, fmt.Errorf("bootstrap admin secret is required to provision %q", req.Username)
	}

	admin, err := s.RegisterUser(ctx, RegisterUserRequest{Username: req.Username, Password: req.Secret})
	if err != nil {
		return nil, err
	}
	admin.Role = RoleAdmin
	if err := s.repository.UpdateUser(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}
