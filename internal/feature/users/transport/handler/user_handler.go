// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/transport/http/dto"
	"user_backend/internal/feature/users/usecase"
)

// UserUsecase はユーザー管理操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id uint) (*entity.User, error)
	UserExists(ctx context.Context, id uint) (bool, error)
	IsEmailUnique(ctx context.Context, email string, excludeID *uint) (bool, error)
	IsUsernameUnique(ctx context.Context, username string, excludeID *uint) (bool, error)
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id uint, in usecase.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// UserHandler はユーザーCRUD操作のHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase

	// AccumulateFieldErrors reports every failing uniqueness check in one
	// response instead of stopping at the first failure.
	AccumulateFieldErrors bool
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からUserUsecaseを注入します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// fieldErrors collects validation messages keyed by field name.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// List はGET /api/Usersを処理します。常に200で、空でも配列を返します。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get はGET /api/Users/:idを処理します。存在しない場合は404を返します。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Create はPOST /api/Usersを処理します。
// - リクエストJSONをCreateUserReqにバインドし、バリデーションエラー時は400を返却
// - メールアドレス・ユーザー名の一意性を順に検証し、重複時はフィールド単位の400を返却
// - 成功時は201とLocationヘッダー、作成されたユーザーを返却
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}
	ctx := c.Request.Context()
	ferrs := fieldErrors{}

	unique, err := h.uc.IsEmailUnique(ctx, req.Email, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !unique {
		ferrs.add("email", "Email is already in use.")
		if !h.AccumulateFieldErrors {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
			return
		}
	}

	unique, err = h.uc.IsUsernameUnique(ctx, req.Username, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !unique {
		ferrs.add("username", "Username is already taken.")
		if !h.AccumulateFieldErrors {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
			return
		}
	}

	if len(ferrs) > 0 {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
		return
	}

	user, err := h.uc.CreateUser(ctx, usecase.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Username:    req.Username,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("user created", "id", user.ID, "username", user.Username)
	c.Header("Location", fmt.Sprintf("/api/Users/%d", user.ID))
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Update はPUT /api/Users/:idを処理します。
// - 存在チェック → 404
// - リクエストに含まれるメールアドレス・ユーザー名のみ、自身を除外して一意性を検証 → 400
// - マージ更新を実行。競合で対象が消えていた場合は404
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update user validation failed", "error", err, "id", id, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}
	ctx := c.Request.Context()

	exists, err := h.uc.UserExists(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: fmt.Sprintf("User with ID %d not found.", id)})
		return
	}

	ferrs := fieldErrors{}
	if req.Email != nil {
		unique, err := h.uc.IsEmailUnique(ctx, *req.Email, &id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if !unique {
			ferrs.add("email", "Email is already in use.")
			if !h.AccumulateFieldErrors {
				c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
				return
			}
		}
	}
	if req.Username != nil {
		unique, err := h.uc.IsUsernameUnique(ctx, *req.Username, &id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if !unique {
			ferrs.add("username", "Username is already taken.")
			if !h.AccumulateFieldErrors {
				c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
				return
			}
		}
	}
	if len(ferrs) > 0 {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Errors: ferrs})
		return
	}

	user, err := h.uc.UpdateUser(ctx, id, usecase.UpdateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Username:    req.Username,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
	})
	if err != nil {
		// 存在チェックと更新の間に削除された場合も404に落ちます
		h.fail(c, err)
		return
	}
	slog.Info("user updated", "id", user.ID)
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Delete はDELETE /api/Users/:idを処理します。成功時は204、存在しない場合は404です。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	exists, err := h.uc.UserExists(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: fmt.Sprintf("User with ID %d not found.", id)})
		return
	}

	if err := h.uc.DeleteUser(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("user deleted", "id", id)
	c.Status(http.StatusNoContent)
}

// fail は型付きエラーをステータスコードへ変換します。
// 未分類のエラーはc.Errorに積み、最外殻のエラーバウンダリに委ねます。
func (h *UserHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		id := c.Param("id")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: fmt.Sprintf("User with ID %s not found.", id)})
	case errors.Is(err, usecase.ErrDuplicateRecord):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.Abort()
	}
}

// parseID はパスパラメータ:idを数値として解釈します。不正な場合は400を返します。
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return uint(id), true
}

// bindingErrorResponse はGinのバインディングエラーをフィールド単位の
// バリデーションエラーマップへ変換します。
func bindingErrorResponse(err error) dto.ValidationErrorResponse {
	out := dto.ValidationErrorResponse{Errors: map[string][]string{}}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Errors["request"] = []string{"invalid request body"}
		return out
	}
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		out.Errors[field] = append(out.Errors[field], validationMessage(fe))
	}
	return out
}

// validationMessage は各バリデーションタグに対応する利用者向けメッセージを返します。
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number format"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
