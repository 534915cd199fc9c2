package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"karmafeed/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		code    int
		message string
	}{
		{"validation", errs.Validation("content is empty"), http.StatusBadRequest, ErrContentInvalid, "content is empty"},
		{"not found", errs.NotFound("post 9 does not exist"), http.StatusNotFound, ErrTargetNotFound, "post 9 does not exist"},
		{"depth", errs.DepthExceeded("max depth is 3"), http.StatusUnprocessableEntity, ErrDepthExceeded, "max depth is 3"},
		{"auth", errs.Authentication("invalid token"), http.StatusUnauthorized, ErrTokenInvalid, "invalid token"},
		{"conflict", errs.Conflict("username taken"), http.StatusConflict, ErrConflict, "username taken"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, ErrServerInternal, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			FromError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
			assert.Nil(t, body.Data)
		})
	}
}
