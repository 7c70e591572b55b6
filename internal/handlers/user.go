package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerlens/careerlens-backend/internal/requestdata"
	"github.com/careerlens/careerlens-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /auth/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	me, err := uh.userService.GetMe(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "user_not_found", err)
		return
	}
	RespondOK(c, me)
}

// POST /api/user/preprocess
func (uh *UserHandler) Preprocess(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.PreprocessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	user, err := uh.userService.Preprocess(c.Request.Context(), rd.UserID, input)
	if err != nil {
		status, code := statusForServiceError(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, gin.H{"data": gin.H{"recommendations": user.Recommendations}, "user": user})
}
