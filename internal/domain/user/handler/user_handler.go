package handler

import (
	"net/http"

	"karmafeed/internal/domain/user/service"
	"karmafeed/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CredentialsInput 注册/登录输入
type CredentialsInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup 处理注册请求
// @Summary 注册
// @Tags User
// @Accept json
// @Produce json
// @Param input body CredentialsInput true "用户名和密码"
// @Success 201 {object} model.SignupResult
// @Failure 409 {object} response.Response "用户名已存在"
// @Router /signup/ [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Signup(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, result)
}

// Login 处理登录请求
// @Summary 登录
// @Tags User
// @Accept json
// @Produce json
// @Param input body CredentialsInput true "用户名和密码"
// @Success 200 {object} model.LoginResult
// @Failure 401 {object} response.Response "用户名或密码错误"
// @Router /login/ [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}
