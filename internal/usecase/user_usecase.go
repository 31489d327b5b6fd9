package usecase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pairview/pairview/internal/domain/models"
	"github.com/pairview/pairview/internal/domain/output"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
	"github.com/pairview/pairview/internal/infra/adapters/postgres/repository"
)

type UserUsecase interface {
	CreateUser(ctx context.Context, username, email, password string) (*models.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
	GenerateJWT(user *models.User) (string, error)

	// GetOnlineUsers lists the identities currently attached to live
	// websocket connections.
	GetOnlineUsers(ctx context.Context) ([]output.OnlineUserInfo, error)
}

type userUsecase struct {
	jwtSecret []byte

	userRepo repository.UserRepository
	connRepo memory.ConnectionRepository
}

func NewUserUsecase(jwtSecret []byte, userRepo repository.UserRepository, connRepo memory.ConnectionRepository) UserUsecase {
	return &userUsecase{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
		connRepo:  connRepo,
	}
}

func (uc *userUsecase) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser()
	user.Username = username
	user.Email = email
	user.Password = string(hashedPassword)

	if err = uc.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

func (uc *userUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return uc.userRepo.GetUserByID(id)
}

func (uc *userUsecase) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := uc.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

func (uc *userUsecase) GenerateJWT(user *models.User) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}

func (uc *userUsecase) GetOnlineUsers(ctx context.Context) ([]output.OnlineUserInfo, error) {
	conns := uc.connRepo.Identified()

	seen := make(map[string]struct{}, len(conns))
	online := make([]output.OnlineUserInfo, 0, len(conns))

	for _, conn := range conns {
		if _, ok := seen[conn.UserID]; ok {
			continue
		}
		seen[conn.UserID] = struct{}{}

		online = append(online, output.OnlineUserInfo{
			ID:       conn.UserID,
			Username: conn.Name,
		})
	}

	return online, nil
}
