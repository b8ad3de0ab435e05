package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

// SessionService checks and manages the per-table QR tokens.
type SessionService struct {
	base
}

func NewSessionService(db *gorm.DB, opts Options) *SessionService {
	return &SessionService{base: newBase(db, opts)}
}

// Validate reports whether token is the current token of table. Lookup
// failures count as invalid.
func (s *SessionService) Validate(ctx context.Context, table int, token string) bool {
	if table < 1 || token == "" {
		return false
	}

	var stored models.TableToken
	err := s.read(ctx, "session.validate", func(db *gorm.DB) error {
		return db.Where("table_num = ?", table).First(&stored).Error
	})
	if err != nil {
		if utils.KindOf(err) != utils.KindNotFound {
			utils.ErrorLogger.WithField("table", table).Errorf("Token lookup failed: %v", err)
		}
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored.Token), []byte(token)) == 1
}

// IssueToken sets the token of table, generating one when token is empty.
// Any previous token of the table stops working immediately.
func (s *SessionService) IssueToken(ctx context.Context, table int, token string) (models.TableToken, error) {
	const op = "session.issue"
	if table < 1 {
		return models.TableToken{}, utils.NewValidationError(op, "table number must be at least 1")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		token = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if len(token) > 64 {
		return models.TableToken{}, utils.NewValidationError(op, "token must be at most 64 characters")
	}

	var result models.TableToken
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		err := tx.Where("table_num = ?", table).First(&result).Error
		switch {
		case err == nil:
			result.Token = token
			return tx.Save(&result).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = models.TableToken{TableNum: table, Token: token}
			return tx.Create(&result).Error
		default:
			return err
		}
	})
	if err != nil {
		return models.TableToken{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"table": table}).Info("Table token issued")
	return result, nil
}

func (s *SessionService) RevokeToken(ctx context.Context, table int) error {
	const op = "session.revoke"
	return s.write(ctx, op, func(tx *gorm.DB) error {
		res := tx.Where("table_num = ?", table).Delete(&models.TableToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFoundError(op, "table has no token")
		}
		return nil
	})
}

func (s *SessionService) ListTokens(ctx context.Context) ([]models.TableToken, error) {
	tokens := []models.TableToken{}
	err := s.read(ctx, "session.list", func(db *gorm.DB) error {
		return db.Order("table_num asc").Find(&tokens).Error
	})
	return tokens, err
}
