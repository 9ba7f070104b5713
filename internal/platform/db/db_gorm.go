// Package db はGORMによるデータベース接続と初期化を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"user_backend/internal/feature/users/domain/entity"
)

// OpenDB は環境変数からDSNを組み立ててMySQLへ接続します。
// 起動直後のDB未準備に備えて最大60秒リトライします。
func OpenDB() *gorm.DB {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		user, pass, host, port, name)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(&entity.User{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

// Seed はusersテーブルが空の場合に動作確認用の初期ユーザーを投入します。
// プロセス起動時にmainから明示的に一度だけ呼ばれます。
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	johnPhone := "555-123-4567"
	janePhone := "555-987-6543"
	seed := []entity.User{
		{
			FirstName:   "John",
			LastName:    "Doe",
			Email:       "john.doe@techhive.com",
			Username:    "johndoe",
			Department:  "IT",
			PhoneNumber: &johnPhone,
			CreatedAt:   time.Now().UTC(),
			IsActive:    true,
		},
		{
			FirstName:   "Jane",
			LastName:    "Smith",
			Email:       "jane.smith@techhive.com",
			Username:    "janesmith",
			Department:  "HR",
			PhoneNumber: &janePhone,
			CreatedAt:   time.Now().UTC(),
			IsActive:    true,
		},
	}
	if err := db.Create(&seed).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}
