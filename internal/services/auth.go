package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/ctxutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

const tokenIssuer = "mantrix-ai"

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// AuthService is a demo identity stub: any well-formed email logs in and receives a signed token.
type AuthService interface {
	Login(ctx context.Context, email string) (*LoginResult, error)
	Identify(ctx context.Context, token string) (string, error)
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	users        repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, users repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Login(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: a valid email is required", apperr.ErrInvalidArgument)
	}
	user, err := as.findOrCreate(ctx, email)
	if err != nil {
		return nil, err
	}

	now := as.now().UTC()
	expiresAt := now.Add(as.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	as.log.Info("user logged in", "user_id", user.ID)
	return &LoginResult{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt, User: user}, nil
}

// Identify validates the token and returns the owner id it was issued for.
func (as *authService) Identify(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", apperr.ErrUnauthorized
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return as.jwtSecretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", apperr.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	ownerID, err := as.Identify(ctx, token)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, OwnerID: ownerID}), nil
}

func (as *authService) CurrentUser(ctx context.Context) (*domain.User, error) {
	ownerID := ctxutil.OwnerID(ctx)
	if ownerID == "" {
		return nil, apperr.ErrUnauthorized
	}
	u, err := as.users.GetByID(dbc(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (as *authService) findOrCreate(ctx context.Context, email string) (*domain.User, error) {
	u, err := as.users.GetByEmail(dbc(ctx), email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u != nil {
		return u, nil
	}
	name, _, _ := strings.Cut(email, "@")
	u, err = as.users.Create(dbc(ctx), &domain.User{Email: email, DisplayName: name})
	if errors.Is(err, apperr.ErrAlreadyExists) {
		return as.users.GetByEmail(dbc(ctx), email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	as.log.Info("demo user created", "user_id", u.ID)
	return u, nil
}
