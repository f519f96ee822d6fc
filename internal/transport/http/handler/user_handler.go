package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"user-service/internal/domain"
	httpez "user-service/internal/transport/http/ez"
)

const (
	MsgInvalidJSON    = "Invalid JSON Format"
	MsgMissingFields  = "Missing one or more required fields: username, email, password"
	MsgInvalidUserID  = "Invalid user id: must be a non-negative integer"
	MsgUserNotFound   = "No User data found for given id."
	MsgServiceRunning = "User-Service is running."
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type UserHandler struct{ svc UserService }

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

type createUserIn struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Priority() int { return 10 }

// MountAPI POST /users、GET /users/:id
func (h *UserHandler) MountAPI(r gin.IRouter) {
	httpez.RegisterAction(r, httpez.Action[createUserIn, string]{
		Method:    http.MethodPost,
		Path:      "/users",
		Binder:    httpez.BindJSONStrict,
		Status:    http.StatusCreated,
		BindError: createBindError,
		Handler: func(c *gin.Context, in *createUserIn) (string, error) {
			id, err := h.svc.Register(c.Request.Context(), in.Username, in.Email, in.Password)
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(id, 10), nil
		},
	})

	httpez.RegisterAction(r, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id, err := strconv.ParseUint(c.Param("id"), 10, 63)
			if err != nil {
				return nil, httpez.BadRequest(MsgInvalidUserID)
			}
			u, err := h.svc.Get(c.Request.Context(), int64(id))
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, httpez.NotFound(MsgUserNotFound)
			}
			return u, nil
		},
	})
}

// 字段缺失 → 缺字段提示；其余解码失败一律视为 JSON 格式错误
func createBindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return httpez.BadRequest(MsgMissingFields)
	}
	return httpez.BadRequest(MsgInvalidJSON)
}
