// Package dto defines data transfer objects for the users feature's HTTP transport layer.
package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phoneRegexp は緩い電話番号形式（数字・ハイフン・スペース・括弧・ドット、
// 先頭の+を許容）を受け付けます。"555-123-4567" のような形式を想定しています。
var phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9()\-\s.]{5,28}[0-9]$`)

// init はGinのバリデータに電話番号用のカスタムルール "phone" を登録します。
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phoneRegexp.MatchString(fl.Field().String())
		})
	}
}

// CreateUserReq represents the request body for POST /api/Users.
// It uses Gin's binding tags for validation (required fields, length limits,
// email and phone formats).
type CreateUserReq struct {
	FirstName   string  `json:"firstName" binding:"required,max=50"`
	LastName    string  `json:"lastName" binding:"required,max=50"`
	Email       string  `json:"email" binding:"required,email"`
	Username    string  `json:"username" binding:"required,min=3,max=20"`
	Department  string  `json:"department"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,phone"`
}
