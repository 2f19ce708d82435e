package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cscs/firecrest-ui-api/config"
	"github.com/cscs/firecrest-ui-api/internal/adapters/filestore"
	"github.com/cscs/firecrest-ui-api/internal/adapters/oidc"
	redisadapter "github.com/cscs/firecrest-ui-api/internal/adapters/redis"
	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/ports"
	"github.com/cscs/firecrest-ui-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer aggregates the constructed services and API clients the
// HTTP layer depends on, plus the Redis client when one was opened so the
// caller can close it on shutdown.
type ServiceContainer struct {
	Auth          *service.AuthService
	Notifications *service.NotificationService

	Status     *firecrest.StatusAPI
	Compute    *firecrest.ComputeAPI
	Filesystem *firecrest.FilesystemAPI
	Transfer   *firecrest.TransferAPI

	RedisClient redis.UniversalClient
}

// BuildServices wires adapters and services from configuration. The session
// store backend is selected by REDIS_ACTIVE; OIDC discovery runs once against
// the configured Keycloak realm.
func BuildServices(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*ServiceContainer, error) {
	sessions, redisClient, err := buildSessionStore(ctx, cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		IssuerURL:    cfg.Keycloak.IssuerURL(),
		ClientID:     cfg.Keycloak.ClientID,
		ClientSecret: cfg.Keycloak.ClientSecret,
		RedirectURL:  cfg.Keycloak.CallbackURL,
		LogoutURL:    cfg.Keycloak.LogoutURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create oidc provider: %w", err)
	}

	client := firecrest.NewClient(firecrest.ClientOptions{
		BaseURL:    cfg.Firecrest.BaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	})

	return &ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider: provider,
			Sessions: sessions,
		}),
		Notifications: service.NewNotificationService(sessions),
		Status:        firecrest.NewStatusAPI(client),
		Compute: firecrest.NewComputeAPI(firecrest.ComputeAPIOptions{
			Client:      client,
			JobsTimeout: cfg.Firecrest.JobsTimeout,
		}),
		Filesystem:  firecrest.NewFilesystemAPI(client),
		Transfer:    firecrest.NewTransferAPI(client),
		RedisClient: redisClient,
	}, nil
}

// buildSessionStore returns the configured session store and, when Redis is
// active, the opened client.
func buildSessionStore(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (ports.SessionStore, redis.UniversalClient, error) {
	if !cfg.Redis.Active {
		store, err := filestore.NewSessionStore(cfg.FileDirPath)
		if err != nil {
			return nil, nil, fmt.Errorf("create file session store: %w", err)
		}
		logger.Info("using file session store", "dir", cfg.FileDirPath)
		return store, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr(), err)
	}

	logger.Info("using redis session store", "addr", cfg.Redis.Addr())
	return redisadapter.NewSessionStore(client), client, nil
}
