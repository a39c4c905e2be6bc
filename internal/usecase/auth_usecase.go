package usecase

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mclrc/microblog/internal/config"
	"github.com/mclrc/microblog/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUsecase struct {
	userRepo domain.UserRepository
	tokens   domain.RefreshTokenStore
	cfg      *config.JWTConfig
}

// TokenPair is the response shape for login and registration.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the access token payload: a username plus the standard expiry.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims is the refresh token payload. It carries no expiry; validity
// is decided by the store. IssuedAt and ID exist so that two tokens issued for
// the same user never compare equal.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens domain.RefreshTokenStore, cfg *config.JWTConfig) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// HashPassword computes the stored credential digest. Deterministic and
// unsalted so that digests are directly comparable across processes.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword checks a plaintext password against the account selected by
// q. A missing account verifies as false, never as an error.
func (u *AuthUsecase) VerifyPassword(q domain.UserQuery, password string) (bool, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case q.Name != "":
		user, err = u.userRepo.GetByName(q.Name)
	case q.Email != "":
		user, err = u.userRepo.GetByEmail(q.Email)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	digest := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(user.PasswordHash)) == 1, nil
}

func (u *AuthUsecase) Register(name, email, password string) (*domain.User, *TokenPair, error) {
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: HashPassword(password),
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := u.issueTokenPair(user.Name)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (u *AuthUsecase) Login(name, password string) (*domain.User, *TokenPair, error) {
	user, err := u.userRepo.GetByName(name)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	digest := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(user.PasswordHash)) != 1 {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := u.issueTokenPair(user.Name)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// DeleteUser removes an account after re-verifying its password, and drops
// its refresh token so the pair issued at login stops working immediately.
func (u *AuthUsecase) DeleteUser(name, password string) error {
	ok, err := u.VerifyPassword(domain.UserQuery{Name: name}, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	if err := u.userRepo.DeleteByName(name); err != nil {
		return err
	}
	u.tokens.Delete(name)
	return nil
}

// CreateAccessToken mints a stateless HS256 token for username expiring at
// now+ttl. Nothing is stored; the signature and expiry are the whole proof.
func (u *AuthUsecase) CreateAccessToken(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.cfg.AccessSecret))
}

// CreateRefreshToken mints a long-lived token signed with the refresh secret
// and registers it as the one valid refresh token for username, superseding
// any earlier one.
func (u *AuthUsecase) CreateRefreshToken(username string) (string, error) {
	claims := &RefreshClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.cfg.RefreshSecret))
	if err != nil {
		return "", err
	}
	u.tokens.Put(username, signed)
	return signed, nil
}

// Refresh exchanges a refresh token for a new access token. The presented
// token must carry a valid signature and be the exact token currently
// registered for its user; a token superseded by a newer login fails the same
// way a forged one does. The refresh token itself is not rotated.
func (u *AuthUsecase) Refresh(presented string, ttl time.Duration) (string, error) {
	token, err := jwt.ParseWithClaims(presented, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(u.cfg.RefreshSecret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}

	current, ok := u.tokens.Get(claims.Username)
	if !ok || current != presented {
		return "", ErrInvalidToken
	}

	return u.CreateAccessToken(claims.Username, ttl)
}

// ValidateAccessToken verifies signature and expiry with no grace period.
// Every failure mode collapses into ErrInvalidToken; callers never learn
// whether a token was malformed, forged, or merely expired.
func (u *AuthUsecase) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(u.cfg.AccessSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (u *AuthUsecase) AccessExpiry() time.Duration {
	return u.cfg.AccessExpiry
}

func (u *AuthUsecase) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return u.userRepo.GetByID(id)
}

func (u *AuthUsecase) issueTokenPair(username string) (*TokenPair, error) {
	accessToken, err := u.CreateAccessToken(username, u.cfg.AccessExpiry)
	if err != nil {
		return nil, err
	}
	refreshToken, err := u.CreateRefreshToken(username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: accessToken, RefreshToken: refreshToken}, nil
}
