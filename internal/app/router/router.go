// Package router はHTTPルーティングとリクエストパイプラインを組み立てます。
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	userhandler "user_backend/internal/feature/users/transport/handler"
	platformhandler "user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/metrics"
	"user_backend/internal/platform/middleware"
)

// NewRouter はミドルウェアとルートを組み立てたgin.Engineを返します。
//
// パイプラインの順序は固定で、意味を持ちます:
//  1. Recovery       — 最外殻のエラーバウンダリ。内側の失敗を汎用500へ変換
//  2. metrics        — リクエスト計数（認証失敗も含めて記録）
//  3. AuthRequired   — Bearerトークンゲート。/api/health と /swagger は素通し
//  4. RequestLogger  — レスポンスボディをバッファしつつ記録する観測者
//
// 認証失敗はRequestLoggerに到達せず、ゲート自身のログのみが残ります。
func NewRouter(users *userhandler.UserHandler, validator middleware.CredentialValidator,
	reg *prometheus.Registry) *gin.Engine {
	r := gin.New()

	collector := metrics.NewCollector(reg)
	r.Use(middleware.Recovery())
	r.Use(metrics.Middleware(collector))
	r.Use(middleware.AuthRequired(validator))
	r.Use(middleware.RequestLogger())

	// 認証不要の公開エンドポイント（AuthRequired内のプレフィックス判定で素通し）
	// 導通確認用
	r.GET("/api/health", platformhandler.Health)
	// APIドキュメント
	r.StaticFile("/swagger/openapi.yaml", "./api/openapi.yaml")

	// Prometheusスクレイプ（Bearer認証付き）
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))

	// ユーザーCRUD
	u := r.Group("/api/Users")
	{
		u.GET("", users.List)
		u.POST("", users.Create)
		u.GET("/:id", users.Get)
		u.PUT("/:id", users.Update)
		u.DELETE("/:id", users.Delete)
	}

	return r
}
