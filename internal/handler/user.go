package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xddprog/auth-backend/internal/model"
	"github.com/xddprog/auth-backend/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUser godoc
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} model.UserResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// BatchUsers godoc
// @Summary Resolve users in bulk by ids or emails
// @Description Unknown ids and emails are skipped, not errors.
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.UsersBatchRequest true "Ids and/or emails"
// @Success 200 {array} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /users/batch [post]
func (h *UserHandler) BatchUsers(c *gin.Context) {
	var req model.UsersBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.IDs) == 0 && len(req.Emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids or emails required"})
		return
	}

	seen := make(map[int64]struct{})
	out := []model.UserResponse{}

	if len(req.IDs) > 0 {
		users, err := h.svc.GetUsersByIDs(c.Request.Context(), req.IDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		for i := range users {
			seen[users[i].ID] = struct{}{}
			out = append(out, model.NewUserResponse(&users[i]))
		}
	}

	if len(req.Emails) > 0 {
		users, err := h.svc.GetUsersByEmails(c.Request.Context(), req.Emails)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		for i := range users {
			if _, dup := seen[users[i].ID]; dup {
				continue
			}
			out = append(out, model.NewUserResponse(&users[i]))
		}
	}

	c.JSON(http.StatusOK, out)
}
