package handler

import (
	"net/http"
	"strconv"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/internal/domain/feed/service"
	"karmafeed/internal/pkg/middleware"
	"karmafeed/pkg/response"
	"karmafeed/pkg/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service service.FeedService
}

func NewFeedHandler(s service.FeedService) *FeedHandler {
	return &FeedHandler{service: s}
}

// PostInput 发帖输入
type PostInput struct {
	Content string `json:"content" binding:"required"`
}

// CommentInput 评论输入，parent_id 为空表示一级评论
type CommentInput struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *uint64 `json:"parent_id"`
}

// LikeInput 点赞输入
type LikeInput struct {
	ID   uint64 `json:"id" binding:"required"`
	Type string `json:"type" binding:"required,oneof=post comment"`
}

// ListPosts 帖子列表
// @Summary 帖子列表（最新在前）
// @Tags Feed
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /posts/ [get]
func (h *FeedHandler) ListPosts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	page, err := h.service.ListPosts(c.Request.Context(), middleware.GetUsername(c), p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags Feed
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} model.PostView
// @Router /posts/{id}/ [get]
func (h *FeedHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), middleware.GetUsername(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// CreatePost 发帖
// @Summary 发帖
// @Tags Feed
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body PostInput true "帖子内容"
// @Success 201 {object} model.PostView
// @Router /posts/ [post]
func (h *FeedHandler) CreatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.GetUsername(c), input.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, post)
}

// GetComments 评论树
// @Summary 帖子评论树（一级评论按时间正序，回复嵌套在 replies 中）
// @Tags Feed
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {array} model.CommentNode
// @Router /posts/{id}/comments/ [get]
func (h *FeedHandler) GetComments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tree, err := h.service.GetCommentTree(c.Request.Context(), middleware.GetUsername(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, tree)
}

// AddComment 发表评论或回复
// @Summary 发表评论
// @Tags Feed
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "帖子ID"
// @Param input body CommentInput true "评论内容"
// @Success 201 {object} model.CommentNode
// @Failure 422 {object} response.Response "回复层级超限"
// @Router /posts/{id}/add_comment/ [post]
func (h *FeedHandler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), id, middleware.GetUsername(c), input.Content, input.ParentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, comment)
}

// ToggleLike 点赞/取消点赞
// @Summary 切换点赞状态
// @Tags Feed
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body LikeInput true "点赞目标"
// @Success 200 {object} model.ToggleResult
// @Router /like/ [post]
func (h *FeedHandler) ToggleLike(c *gin.Context) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	target := model.Target{Type: model.TargetType(input.Type), ID: input.ID}
	result, err := h.service.ToggleLike(c.Request.Context(), middleware.GetUsername(c), target)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid id")
		return 0, false
	}
	return id, true
}
