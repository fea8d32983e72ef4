package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

// Wrong username and wrong password share one message
const errInvalidCredentials = "invalid username or password"

type Service struct {
	users    repository.StaffUserRepository
	hasher   security.PasswordHasher
	jwtSvc   auth.JWTService
	validate *validator.Validator
}

func NewService(users repository.StaffUserRepository, hasher security.PasswordHasher,
	jwtSvc auth.JWTService, validate *validator.Validator) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		jwtSvc:   jwtSvc,
		validate: validate,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized(errInvalidCredentials, nil)
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			log.Warn().Str("username", user.Username).Msg("failed staff login")
			return nil, apperrors.Unauthorized(errInvalidCredentials, nil)
		}
		return nil, apperrors.Internal(err)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("staff logged in")
	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// ValidateToken verifies a session token and returns the identity it carries
func (s *Service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token", err)
	}
	return &model.TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     model.StaffRole(claims.Role),
	}, nil
}

// EnsureStaff creates the initial staff accounts when no staff user exists yet.
// It returns the number of accounts created.
func (s *Service) EnsureStaff(ctx context.Context, seeds []model.StaffSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, seed := range seeds {
		role := seed.Role
		if role == "" {
			role = model.StaffRoleAssistant
		}
		if role != model.StaffRoleDoctor && role != model.StaffRoleAssistant {
			return created, apperrors.InvalidInput(fmt.Sprintf("unknown staff role %q", role), nil)
		}

		hash, err := s.hasher.Hash(seed.Password)
		if err != nil {
			return created, apperrors.InvalidInput(fmt.Sprintf("password for %s: %v", seed.Username, err), err)
		}

		user := &model.StaffUser{
			Username:     strings.TrimSpace(seed.Username),
			PasswordHash: hash,
			Role:         role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return created, err
		}
		created++
		log.Info().Str("username", user.Username).Str("role", string(role)).Msg("initial staff user created")
	}
	return created, nil
}
