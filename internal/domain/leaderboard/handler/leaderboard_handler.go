package handler

import (
	"net/http"
	"strconv"

	"karmafeed/internal/domain/leaderboard/service"
	"karmafeed/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxTopN 单次请求最多返回的条数
const maxTopN = 100

type LeaderboardHandler struct {
	board *service.Leaderboard
}

func NewLeaderboardHandler(board *service.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// GetTop 积分排行榜
// @Summary 积分排行榜（积分降序，同分按用户名升序）
// @Tags Leaderboard
// @Produce json
// @Param n query int false "返回条数，默认 5"
// @Success 200 {array} model.Entry
// @Router /leaderboard/ [get]
func (h *LeaderboardHandler) GetTop(c *gin.Context) {
	n, ok := parseN(c)
	if !ok {
		return
	}

	entries, err := h.board.GetTop(c.Request.Context(), n)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, entries)
}

// Refresh 立即重算排行榜
// @Summary 立即重算排行榜，进行中的计算会被复用
// @Tags Leaderboard
// @Produce json
// @Security Bearer
// @Param n query int false "返回条数，默认 5"
// @Success 200 {array} model.Entry
// @Router /leaderboard/refresh [post]
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	n, ok := parseN(c)
	if !ok {
		return
	}

	entries, err := h.board.Refresh(c.Request.Context(), n)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, entries)
}

func parseN(c *gin.Context) (int, bool) {
	raw := c.Query("n")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "n must be a positive integer")
		return 0, false
	}
	if n > maxTopN {
		n = maxTopN
	}
	return n, true
}
