package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/internal/users"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/grocer-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	msgSessionNotFound = "Session not found"
	msgSessionRequired = "Session ID and expiration are required"
	msgInvalidSession  = "Invalid or expired session"
	msgJoinIdentity    = "Name or user ID is required"
	msgUserNotFound    = "User not found"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionRepository interface {
	List(ctx context.Context) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindLive(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, id string, expiresAt time.Time) (*models.Session, error)
	Update(ctx context.Context, id string, in UpdateSessionInput) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListActive(ctx context.Context) ([]models.Session, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type usersRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type membershipsRepository interface {
	Join(ctx context.Context, sessionID string, userID int64) (*models.SessionUser, bool, error)
	ListSessionUsers(ctx context.Context, sessionID string) ([]memberships.SessionUserDTO, error)
}

// Service exposes session lifecycle and membership operations.
type Service interface {
	List(ctx context.Context) ([]SessionDTO, error)
	GetByID(ctx context.Context, id string) (*SessionDTO, error)
	Create(ctx context.Context, input CreateSessionInput) (*SessionDTO, error)
	Update(ctx context.Context, id string, input UpdateSessionInput) (*SessionDTO, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]SessionDTO, error)
	DeactivateExpired(ctx context.Context) (int64, error)
	Join(ctx context.Context, id string, input JoinSessionInput) (*JoinResult, error)
	ListMembers(ctx context.Context, id string) ([]memberships.SessionUserDTO, error)
}

// TxRepositories rebinds the repositories a join touches to one transaction.
type TxRepositories func(tx *gorm.DB) (usersRepository, membershipsRepository)

type service struct {
	repo        sessionRepository
	users       usersRepository
	memberships membershipsRepository
	tx          txRunner
	bindTx      TxRepositories
}

// NewService builds a session service. tx and bindTx make joins atomic; when
// either is nil joins run without a transaction.
func NewService(repo sessionRepository, usersRepo usersRepository, membershipsRepo membershipsRepository, tx txRunner, bindTx TxRepositories) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("session repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{
		repo:        repo,
		users:       usersRepo,
		memberships: membershipsRepo,
		tx:          tx,
		bindTx:      bindTx,
	}, nil
}

// BindRepositories is the TxRepositories used in production wiring.
func BindRepositories(usersRepo *users.Repository, membershipsRepo *memberships.Repository) TxRepositories {
	return func(tx *gorm.DB) (usersRepository, membershipsRepository) {
		return usersRepo.WithTx(tx), membershipsRepo.WithTx(tx)
	}
}

func (s *service) List(ctx context.Context) ([]SessionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list sessions")
	}
	return fromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*SessionDTO, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, msgSessionNotFound, "load session")
	}
	return FromModel(session), nil
}

func (s *service) Create(ctx context.Context, input CreateSessionInput) (*SessionDTO, error) {
	id := strings.TrimSpace(input.SessionID)
	if id == "" || input.ExpiresAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgSessionRequired)
	}
	session, err := s.repo.Create(ctx, id, input.ExpiresAt)
	if err != nil {
		return nil, pkgerrors.Internal(err, "create session")
	}
	return FromModel(session), nil
}

// Update returns nil without error when input names no writable column.
func (s *service) Update(ctx context.Context, id string, input UpdateSessionInput) (*SessionDTO, error) {
	if input.Empty() {
		return nil, nil
	}
	affected, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, pkgerrors.Internal(err, "update session")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgSessionNotFound)
	}
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Internal(err, "delete session")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgSessionNotFound)
	}
	return nil
}

func (s *service) ListActive(ctx context.Context) ([]SessionDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list active sessions")
	}
	return fromModels(rows), nil
}

func (s *service) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx)
	if err != nil {
		return 0, pkgerrors.Internal(err, "deactivate expired sessions")
	}
	return n, nil
}

func (s *service) Join(ctx context.Context, id string, input JoinSessionInput) (*JoinResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" && (input.UserID == nil || *input.UserID <= 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgJoinIdentity)
	}

	if _, err := s.repo.FindLive(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidSession)
		}
		return nil, pkgerrors.Internal(err, "load session")
	}

	var result *JoinResult
	join := func(usersRepo usersRepository, membershipsRepo membershipsRepository) error {
		user, err := resolveUser(ctx, usersRepo, name, input.UserID)
		if err != nil {
			return err
		}
		membership, created, err := membershipsRepo.Join(ctx, id, user.UserID)
		if err != nil {
			return pkgerrors.Internal(err, "join session")
		}
		result = &JoinResult{
			Membership: *memberships.ToDTO(membership),
			User:       *users.FromModel(user),
			Created:    created,
		}
		return nil
	}

	if s.tx == nil || s.bindTx == nil {
		if err := join(s.users, s.memberships); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return join(s.bindTx(tx))
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func resolveUser(ctx context.Context, repo usersRepository, name string, userID *int64) (*models.User, error) {
	if userID != nil && *userID > 0 {
		user, err := repo.FindByID(ctx, *userID)
		if err != nil {
			return nil, notFoundOrInternal(err, msgUserNotFound, "load user")
		}
		return user, nil
	}
	user, err := repo.Create(ctx, users.CreateUserDTO{Name: name})
	if err != nil {
		return nil, pkgerrors.Internal(err, "create user")
	}
	return user, nil
}

func (s *service) ListMembers(ctx context.Context, id string) ([]memberships.SessionUserDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOrInternal(err, msgSessionNotFound, "load session")
	}
	members, err := s.memberships.ListSessionUsers(ctx, id)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list session users")
	}
	return members, nil
}

func notFoundOrInternal(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Internal(err, op)
}
