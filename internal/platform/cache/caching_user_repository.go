// Package cache はリポジトリをRedisキャッシュでデコレートします。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/usecase"
)

// CachingUserRepository はUserRepositoryのリードスルーキャッシュ実装です。
// 読み取り（FindByID / FindAll）をキャッシュし、書き込み時に無効化します。
// 一意性チェックと存在チェックは常に本体へ素通しします（鮮度が要件のため）。
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository は UserRepository を Redis キャッシュでデコレートします。
// ttl<=0 の場合は 5分にフォールバックします。namespace が空なら "users" を使います。
// rdb が nil の場合、すべての操作は本体へ素通しされます。
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingUserRepository) idKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

func (c *CachingUserRepository) allKey() string {
	return c.namespace + ":all"
}

// FindByID はキャッシュを確認し、ミス時は本体から取得して保存します。
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.idKey(id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var u entity.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// 壊れていたら落とす
		_ = c.rdb.Del(ctx, key).Err()
	}

	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// キャッシュ保存（ベストエフォート）
	if b, err := json.Marshal(u); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return u, nil
}

// FindAll は一覧全体を単一キーでキャッシュします。
func (c *CachingUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindAll(ctx)
	}

	key := c.allKey()
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var users []entity.User
		if err := json.Unmarshal(b, &users); err == nil {
			return users, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	users, err := c.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(users); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return users, nil
}

// Create は本体へ書き込んだ後、一覧キャッシュを無効化します。
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, c.allKey())
	return nil
}

// Update は本体へ書き込んだ後、対象IDと一覧のキャッシュを無効化します。
func (c *CachingUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(u.ID), c.allKey())
	return nil
}

// Delete は本体から削除した後、対象IDと一覧のキャッシュを無効化します。
func (c *CachingUserRepository) Delete(ctx context.Context, u *entity.User) error {
	if err := c.inner.Delete(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(u.ID), c.allKey())
	return nil
}

// ExistsByID は常に本体へ委譲します。
func (c *CachingUserRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	return c.inner.ExistsByID(ctx, id)
}

// ExistsByEmail は常に本体へ委譲します。
func (c *CachingUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uint) (bool, error) {
	return c.inner.ExistsByEmail(ctx, email, excludeID)
}

// ExistsByUsername は常に本体へ委譲します。
func (c *CachingUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uint) (bool, error) {
	return c.inner.ExistsByUsername(ctx, username, excludeID)
}

// invalidate は指定キーを削除します。失敗しても本処理は成功させます。
func (c *CachingUserRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
