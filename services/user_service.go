package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	base
}

func NewUserService(db *gorm.DB, opts Options) *UserService {
	return &UserService{base: newBase(db, opts)}
}

// Authenticate checks a staff email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	const op = "user.authenticate"

	var user models.User
	err := s.read(ctx, op, func(db *gorm.DB) error {
		return db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	})
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return models.User{}, utils.NewUnauthorizedError(op, "invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, utils.NewUnauthorizedError(op, "invalid credentials")
	}
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, name, email, password, role string) (models.User, error) {
	const op = "user.create"
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, utils.NewValidationError(op, "invalid email")
	}
	if len(password) < 8 {
		return models.User{}, utils.NewValidationError(op, "password must be at least 8 characters")
	}
	if role != models.RoleAdmin && role != models.RoleKitchen {
		return models.User{}, utils.NewValidationError(op, "role must be admin or kitchen")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{Name: name, Email: email, Password: string(hashed), Role: role}
	err = s.write(ctx, op, func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewConflictError(op, "email already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.read(ctx, "user.get", func(db *gorm.DB) error {
		return db.First(&user, id).Error
	})
	return user, err
}
