package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"towerhub-api/packages/auth/middleware"
	"towerhub-api/packages/auth/models"
	"towerhub-api/packages/auth/utils"
	coreServices "towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB            *gorm.DB
	PlayerService *coreServices.PlayerService
}

func NewAuthHandler(db *gorm.DB, playerService *coreServices.PlayerService) *AuthHandler {
	return &AuthHandler{
		DB:            db,
		PlayerService: playerService,
	}
}

func internalError(c *gin.Context, err error, message string) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			internalError(c, err, "Failed to load user")
		}
		return nil, false
	}
	return &user, true
}

// touchLogin met à jour lastLogin, nbConnexion n'augmente qu'une fois par jour.
func touchLogin(db *gorm.DB, user *models.User) error {
	now := time.Now()
	if user.LastLogin == nil || user.LastLogin.Format("2006-01-02") != now.Format("2006-01-02") {
		user.NbConnexion++
	}
	user.LastLogin = &now
	return db.Model(user).Updates(map[string]interface{}{
		"last_login":   now,
		"nb_connexion": user.NbConnexion,
	}).Error
}

// @Summary User Registration
// @Description Register a new user, create their player record and get JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "User registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Mobile = strings.TrimSpace(req.Mobile)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	query := h.DB.Unscoped().Where("username = ? OR mobile = ?", req.Username, req.Mobile)
	if email != "" {
		query = query.Or("email = ?", email)
	}
	if err := query.First(&existing).Error; err == nil {
		switch {
		case existing.Username == req.Username:
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case existing.Mobile == req.Mobile:
			c.JSON(http.StatusConflict, gin.H{"error": "Mobile number already registered"})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		}
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(c, err, "Failed to check existing users")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		internalError(c, err, "Failed to hash password")
		return
	}

	now := time.Now()
	user := models.User{
		Name:        strings.TrimSpace(req.Name),
		Username:    req.Username,
		Mobile:      req.Mobile,
		Password:    hashedPassword,
		Enabled:     true,
		LastLogin:   &now,
		NbConnexion: 1, // Auto-login compte comme première connexion
		Roles:       models.GetDefaultRoles(),
	}
	if email != "" {
		user.Email = &email
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		_, err := h.PlayerService.WithDB(tx).CreatePlayer(user)
		return err
	})
	if err != nil {
		internalError(c, err, "Failed to create user")
		return
	}

	tokenPair, err := utils.GenerateTokenPair(h.DB, user, c.Request.UserAgent())
	if err != nil {
		internalError(c, err, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{TokenResponse: *tokenPair, User: user})
}

// @Summary User Login
// @Description Login with mobile number and password to get JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "User login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Where("mobile = ?", strings.TrimSpace(req.Mobile)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.Enabled {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account disabled"})
		return
	}

	if err := touchLogin(h.DB, &user); err != nil {
		internalError(c, err, "Failed to update user login info")
		return
	}

	tokenPair, err := utils.GenerateTokenPair(h.DB, user, c.Request.UserAgent())
	if err != nil {
		internalError(c, err, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{TokenResponse: *tokenPair, User: user})
}

// @Summary Refresh Access Token
// @Description Rotate the refresh token and get a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenPair, err := utils.RefreshAccessToken(h.DB, req.RefreshToken)
	switch {
	case errors.Is(err, utils.ErrRefreshTokenReused):
		zerolog.Ctx(c.Request.Context()).Warn().Msg("refresh token reuse, all sessions revoked")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	case errors.Is(err, utils.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	case err != nil:
		internalError(c, err, "Failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, tokenPair)
}

// @Summary Logout
// @Description Logout and revoke refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshTokenRequest true "Refresh token to revoke"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.RevokeRefreshToken(h.DB, req.RefreshToken); err != nil {
		internalError(c, err, "Failed to revoke token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// @Summary Logout from All Devices
// @Description Revoke all refresh tokens for the current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := utils.RevokeAllUserTokens(h.DB, userID); err != nil {
		internalError(c, err, "Failed to revoke tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out from all devices"})
}

// @Summary Get User Profile
// @Description Get current user account information
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Update User Profile
// @Description Update name, bio and avatar of the current user
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateMeRequest true "Fields to update"
// @Success 200 {object} models.UpdateUserResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /users/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req models.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Select("name", "bio", "avatar_url").Updates(user).Error; err != nil {
			return err
		}
		return h.PlayerService.WithDB(tx).SyncProfile(*user)
	})
	if err != nil {
		internalError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, models.UpdateUserResponse{Success: true, User: *user})
}

// @Summary Change Password
// @Description Change the current user's password; other sessions are revoked
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password change request"
// @Success 200 {object} models.ChangePasswordResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /profile/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is invalid"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		internalError(c, err, "Failed to hash password")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", hashedPassword).Error; err != nil {
			return err
		}
		return utils.RevokeAllUserTokens(tx, user.ID)
	})
	if err != nil {
		internalError(c, err, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, models.ChangePasswordResponse{Success: true})
}

// @Summary Patch User Roles and Status
// @Description Update user email, roles and enabled status (super admin only)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param request body models.PatchUserRequest true "User patch request"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/users/{id} [patch]
func (h *AuthHandler) PatchUser(c *gin.Context) {
	var req models.PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var target models.User
	if err := h.DB.First(&target, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			internalError(c, err, "Failed to load user")
		}
		return
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		var count int64
		if err := h.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, target.ID).Count(&count).Error; err != nil {
			internalError(c, err, "Failed to check email")
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		target.Email = &email
	}

	if req.Roles != nil {
		for _, role := range *req.Roles {
			if !models.IsValidRole(role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid role: %s", role)})
				return
			}
		}
		target.Roles = models.Roles(*req.Roles)
	}

	if req.Enabled != nil {
		target.Enabled = *req.Enabled
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&target).Select("email", "roles", "enabled").Updates(&target).Error; err != nil {
			return err
		}
		if !target.Enabled {
			return utils.RevokeAllUserTokens(tx, target.ID)
		}
		return nil
	})
	if err != nil {
		internalError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, target)
}

// @Summary Get Users List
// @Description Get paginated list of users with optional search (super admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (default: 1)" default(1)
// @Param perPage query int false "Items per page (default: 10, max: 100)" default(10)
// @Param search query string false "Search in username, name or mobile"
// @Success 200 {object} models.UserListResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/users [get]
func (h *AuthHandler) GetUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if err != nil || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid perPage parameter"})
		return
	}
	if perPage > 100 {
		perPage = 100
	}

	query := h.DB.Model(&models.User{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR mobile LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		internalError(c, err, "Failed to count users")
		return
	}

	var users []models.User
	if err := query.Order("id ASC").Offset((page - 1) * perPage).Limit(perPage).Find(&users).Error; err != nil {
		internalError(c, err, "Failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	})
}
