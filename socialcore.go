// Package socialcore assembles the configured infrastructure into the core
// services: user identity and sessions, the follow graph, the feed, and
// the admin check. The surrounding layers (routing, templating, mail
// delivery) build on top of the Core handle; they are not part of this
// module.
package socialcore

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-social-core/internal/auth"
	"go-social-core/internal/core/cache"
	"go-social-core/internal/core/config"
	"go-social-core/internal/core/database"
	"go-social-core/internal/core/logger"
	"go-social-core/internal/domain"
	"go-social-core/internal/repo"
	"go-social-core/internal/service"
)

type Core struct {
	Users *service.UserService
	Graph *service.GraphService
	Feed  *service.FeedService
	Authz *service.Authorizer

	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
}

// New wires a Core from configuration. A nil mailer discards mail. The
// returned cleanup flushes the logger and closes the cache connection.
func New(cfg *config.Config, mailer service.Mailer) (*Core, func(), error) {
	log, logDone := logger.New(cfg.Log.Level, cfg.Log.JSON)

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		logDone()
		return nil, nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, &domain.User{}, &domain.Relationship{}, &domain.Micropost{}); err != nil {
			logDone()
			return nil, nil, err
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	hasher := auth.NewHasher(cfg.EffectiveBcryptCost())
	graph := service.NewGraphService(repo.NewRelationshipRepo(db), c, log)

	core := &Core{
		Users: service.NewUserService(repo.NewUserRepo(db), hasher, mailer, log, cfg.ResetTokenTTL()),
		Graph: graph,
		Feed:  service.NewFeedService(graph, repo.NewMicropostRepo(db)),
		Authz: service.NewAuthorizer(cfg.Auth.AdminEmails),
		Log:   log,
		DB:    db,
		Cache: c,
	}
	cleanup := func() {
		if c != nil {
			_ = c.Close()
		}
		logDone()
	}
	return core, cleanup, nil
}
