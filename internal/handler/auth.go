package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luct-reporting/internal/auth"
	"luct-reporting/internal/user"
)

func (h *Handler) register(c *gin.Context) {
	var in user.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": id})
}

func (h *Handler) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	u, err := h.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}

	stream := ""
	if u.Stream != nil {
		stream = *u.Stream
	}
	token, exp, err := auth.Issue(u.ID, u.Role, stream, h.jwtIssuer, h.jwtKey, h.accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.Unix(),
		"user": gin.H{
			"id":       u.ID,
			"name":     u.Name,
			"email":    u.Email,
			"role":     u.Role,
			"stream":   u.Stream,
			"class_id": u.ClassID,
		},
	})
}
