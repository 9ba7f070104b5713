// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/usecase"
)

// userMySQL はUserRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type userMySQL struct {
	db *gorm.DB
}

// userMySQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMySQL)(nil)

// NewUserMySQL は指定されたgorm.DB接続でuserMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserMySQL(db *gorm.DB) *userMySQL {
	return &userMySQL{db: db}
}

// isDuplicateKey はMySQLのユニークキー重複エラー（1062）かどうかを判定します。
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindAll はすべてのユーザーを取得します。暗黙のソートは行いません。
func (r *userMySQL) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create はユーザーをデータベースに追加し、IDを採番します。
// ユニークインデックス違反の場合、usecase.ErrDuplicateRecordを返します。
func (r *userMySQL) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// Update は既存ユーザーの全フィールドを保存します。
// 対象行が存在しない（読み取りと書き込みの間に削除された）場合、
// usecase.ErrConcurrentUpdateを返します。
func (r *userMySQL) Update(ctx context.Context, u *entity.User) error {
	tx := r.db.WithContext(ctx).Save(u)
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return usecase.ErrDuplicateRecord
		}
		return tx.Error
	}
	// UpdatedAtは毎回変化するため、影響行数0は行の消失を意味します
	if tx.RowsAffected == 0 {
		return usecase.ErrConcurrentUpdate
	}
	return nil
}

// Delete はユーザーを物理削除します。
// 対象行が既に存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) Delete(ctx context.Context, u *entity.User) error {
	tx := r.db.WithContext(ctx).Delete(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// ExistsByID は指定IDのユーザーが存在するかを返します。
func (r *userMySQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail は大文字小文字を区別せずに同じメールアドレスを持つ
// 他のユーザーが存在するかを返します。excludeIDが指定された場合、
// そのIDのレコードは除外されます（更新時の自己比較用）。
func (r *userMySQL) ExistsByEmail(ctx context.Context, email string, excludeID *uint) (bool, error) {
	return r.existsBy(ctx, "LOWER(email) = LOWER(?)", email, excludeID)
}

// ExistsByUsername はExistsByEmailのユーザー名版です。
func (r *userMySQL) ExistsByUsername(ctx context.Context, username string, excludeID *uint) (bool, error) {
	return r.existsBy(ctx, "LOWER(username) = LOWER(?)", username, excludeID)
}

func (r *userMySQL) existsBy(ctx context.Context, cond, value string, excludeID *uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{}).Where(cond, value)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
