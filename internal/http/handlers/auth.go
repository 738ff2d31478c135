package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/http/middleware"
	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerInput struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type operatorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func viewOf(op auth.Operator) operatorView {
	return operatorView{ID: op.ID, Username: op.Username, Email: op.Email, IsAdmin: op.IsAdmin}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if !bindJSON(c, &in) {
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.AccessToken,
		"token_type":   "bearer",
		"user":         viewOf(sess.Operator),
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	op, _ := middleware.CurrentOperator(c)
	c.JSON(http.StatusOK, op)
}

// POST /api/auth/register creates another operator. Only operators may call it.
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if !bindJSON(c, &in) {
		return
	}

	op, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		IsAdmin:  true,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully",
		"user":    viewOf(op),
	})
}
