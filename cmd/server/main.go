package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"user_backend/internal/app/router"
	"user_backend/internal/feature/users/adapters"
	userhandler "user_backend/internal/feature/users/transport/handler"
	"user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/cache"
	platformdb "user_backend/internal/platform/db"
	"user_backend/internal/platform/middleware"
	platformredis "user_backend/internal/platform/redis"
)

func main() {
	// 構造化ログ（JSON）
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// db
	db := platformdb.OpenDB()

	// 初期データ投入（空テーブルのときのみ）
	if os.Getenv("SEED_USERS") == "true" {
		if err := platformdb.Seed(db); err != nil {
			log.Fatalf("failed to seed users: %v", err)
		}
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository（Redisキャッシュでラップ）
	userRepo := adapters.NewUserMySQL(db)
	cachedRepo := cache.NewCachingUserRepository(rdb, 0, userRepo, "users")

	// Usecase
	userUC := usecase.NewUserUsecase(cachedRepo)

	// Handler
	userH := userhandler.NewUserHandler(userUC)

	// 認証方式の選択: API_TOKENがあれば共有シークレット、なければJWT
	validator := newCredentialValidator()

	// メトリクスレジストリ
	reg := prometheus.NewRegistry()

	// ルータ生成
	r := router.NewRouter(userH, validator, reg)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}

// newCredentialValidator は環境変数から認証バリデータを構成します。
func newCredentialValidator() middleware.CredentialValidator {
	if token := os.Getenv("API_TOKEN"); token != "" {
		return middleware.NewStaticTokenValidator(token)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("[WARN] Neither API_TOKEN nor JWT_SECRET is set. Set a strong secret in production.")
	}
	return middleware.NewJWTValidator(secret)
}
