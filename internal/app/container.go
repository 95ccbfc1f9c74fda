package app

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shuke0908/quantauth/domain"
	"github.com/shuke0908/quantauth/internal/config"
	"github.com/shuke0908/quantauth/internal/infrastructure/auth"
	"github.com/shuke0908/quantauth/internal/infrastructure/database"
	"github.com/shuke0908/quantauth/internal/infrastructure/notifications"
	"github.com/shuke0908/quantauth/internal/infrastructure/repositories"
	"github.com/shuke0908/quantauth/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Log    *logrus.Logger

	DB          *gorm.DB
	RedisClient *database.RedisClient

	UserRepo    *repositories.UserRepositoryImpl
	RefreshRepo domain.RefreshTokenRepository

	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	ResetSvc        domain.ResetService
	AuthSvc         domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	container := &Container{Config: cfg, Log: log}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initRedis()
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.RefreshRepo = repositories.NewRefreshTokenRepository(c.RedisClient.Client, c.Config.RefreshTTL)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	c.TokenSvc = auth.NewJWTService(auth.JWTConfig{
		Secret:     c.Config.JWTSecret,
		Issuer:     c.Config.JWTIssuer,
		AccessTTL:  c.Config.AccessTTL,
		RefreshTTL: c.Config.RefreshTTL,
	}, c.UserRepo)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Log,
	)
	c.ResetSvc = services.NewResetService(c.NotificationSvc, c.UserRepo, c.RedisClient.Client, services.ResetConfig{
		Length:       c.Config.ResetLength,
		TTL:          c.Config.ResetTTL,
		MaxAttempts:  c.Config.ResetMaxAttempts,
		ResendWindow: c.Config.ResetResendWindow,
	})
	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.RefreshRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.ResetSvc,
		c.Log,
	)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
