package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shuke0908/quantauth/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID               string         `gorm:"primaryKey;size:36"`
	Email            string         `gorm:"uniqueIndex;size:255"`
	Phone            string         `gorm:"size:32"`
	PasswordHash     string         `gorm:"column:password"`
	FirstName        string         `gorm:"size:100"`
	LastName         string         `gorm:"size:100"`
	Role             string         `gorm:"index;size:64"`
	IsActive         bool           `gorm:"index"`
	TwoFactorEnabled bool
	TokenEpoch       int64          `gorm:"not null;default:1"`
	Balance          float64
	VIPTier          string         `gorm:"size:32"`
	KYCStatus        string         `gorm:"size:32"`
	CreatedAt        time.Time      `gorm:"index"`
	UpdatedAt        time.Time      `gorm:"index"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. Emails are stored lowercase so
// lookups stay case-insensitive. The unique index on email is the final
// arbiter: two concurrent inserts both surface ErrUserAlreadyExists for
// the loser.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.TokenEpoch = dbUser.TokenEpoch
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	return r.db.WithContext(ctx).Save(dbUser).Error
}

// UpdatePasswordHash implements domain.UserRepository as a single-column
// update, so a login racing a password change reads either the old or the
// new hash, never a torn record.
func (r *UserRepositoryImpl) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	result := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// BumpTokenEpoch implements domain.UserRepository. The increment runs as
// one conditional UPDATE; concurrent bumps serialize in the database.
func (r *UserRepositoryImpl) BumpTokenEpoch(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		UpdateColumn("token_epoch", gorm.Expr("token_epoch + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domain.ErrUserNotFound
	}
	return r.Epoch(ctx, userID)
}

// Epoch implements domain.TokenEpochs
func (r *UserRepositoryImpl) Epoch(ctx context.Context, userID string) (int64, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Select("token_epoch").Where("id = ?", userID).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return dbUser.TokenEpoch, nil
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	epoch := user.TokenEpoch
	if epoch == 0 {
		epoch = 1
	}
	return &DBUser{
		ID:               user.ID,
		Email:            user.Email,
		Phone:            user.Phone,
		PasswordHash:     user.PasswordHash,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Role:             user.Role,
		IsActive:         user.IsActive,
		TwoFactorEnabled: user.TwoFactorEnabled,
		TokenEpoch:       epoch,
		Balance:          user.Balance,
		VIPTier:          user.VIPTier,
		KYCStatus:        user.KYCStatus,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:               dbUser.ID,
		Email:            dbUser.Email,
		Phone:            dbUser.Phone,
		PasswordHash:     dbUser.PasswordHash,
		FirstName:        dbUser.FirstName,
		LastName:         dbUser.LastName,
		Role:             dbUser.Role,
		IsActive:         dbUser.IsActive,
		TwoFactorEnabled: dbUser.TwoFactorEnabled,
		TokenEpoch:       dbUser.TokenEpoch,
		Balance:          dbUser.Balance,
		VIPTier:          dbUser.VIPTier,
		KYCStatus:        dbUser.KYCStatus,
		CreatedAt:        dbUser.CreatedAt,
		UpdatedAt:        dbUser.UpdatedAt,
	}
}

// Compile-time interface compliance verification
var (
	_ domain.UserRepository = (*UserRepositoryImpl)(nil)
	_ domain.TokenEpochs    = (*UserRepositoryImpl)(nil)
)
