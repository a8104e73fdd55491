package players

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/PSM90/fuorid20-arena-market/pkg/auth"
	"github.com/PSM90/fuorid20-arena-market/pkg/auth/session"
	"github.com/PSM90/fuorid20-arena-market/pkg/config"
	"github.com/PSM90/fuorid20-arena-market/pkg/db"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service handles player accounts and table logins.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	List(ctx context.Context) ([]PlayerSummary, error)
	Create(ctx context.Context, input CreateInput) (*models.Player, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type sessionManager interface {
	Create(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build a players service.
type ServiceParams struct {
	Repo           Repository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo        Repository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService constructs a players service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("players repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		repo:        params.Repo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// LoginRequest carries table login credentials.
type LoginRequest struct {
	Name     string
	Password string
}

// LoginResponse returns the minted token plus the player's public fields.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	Player      PlayerSummary `json:"player"`
}

// PlayerSummary is the public view of a player account.
type PlayerSummary struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Role        enums.PlayerRole `json:"role"`
	IsActive    bool             `json:"is_active"`
}

// CreateInput carries the fields for a new player account.
type CreateInput struct {
	Name        string
	DisplayName string
	Password    string
	Role        enums.PlayerRole
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	name := strings.TrimSpace(strings.ToLower(req.Name))
	if name == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	player, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load player")
	}
	if !player.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, player.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Role:        player.Role,
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResponse{
		AccessToken: token,
		Player:      summarize(player),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	player, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "player not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load player")
	}
	return player, nil
}

func (s *service) List(ctx context.Context) ([]PlayerSummary, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list players")
	}
	summaries := make([]PlayerSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, summarize(&records[i]))
	}
	return summaries, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Player, error) {
	name := strings.TrimSpace(strings.ToLower(input.Name))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "player name is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	role := input.Role
	if role == "" {
		role = enums.RolePlayer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	display := strings.TrimSpace(input.DisplayName)
	if display == "" {
		display = name
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	player := &models.Player{
		ID:           uuid.New(),
		Name:         name,
		DisplayName:  display,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, player); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("player %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create player")
	}
	return player, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	player, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "player not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load player")
	}
	player.IsActive = active
	if err := s.repo.Update(ctx, player); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update player")
	}
	return nil
}

func summarize(player *models.Player) PlayerSummary {
	return PlayerSummary{
		ID:          player.ID,
		Name:        player.Name,
		DisplayName: player.DisplayName,
		Role:        player.Role,
		IsActive:    player.IsActive,
	}
}
