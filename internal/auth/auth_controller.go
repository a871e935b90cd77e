package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/pkg/token"
	"github.com/team-rf/roster/pkg/utils"
	"github.com/team-rf/roster/pkg/validator"
	"gorm.io/gorm"
)

type AuthController struct {
	repo        AuthRepository
	provisioner user.PlayerProvisioner
	config      *config.Config
}

func NewAuthController(repo AuthRepository, provisioner user.PlayerProvisioner, cfg *config.Config) *AuthController {
	return &AuthController{repo: repo, provisioner: provisioner, config: cfg}
}

func (ac *AuthController) generateAndSaveTokens(u *user.User) (string, string, error) {
	accessToken, err := token.GenerateJWT(u.ID, u.Role, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", fmt.Errorf("access token generation failed: %w", err)
	}

	refreshTokenString, err := token.GenerateRefreshToken(u.ID, ac.config.JWT.RefreshTokenSecret, ac.config.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return "", "", fmt.Errorf("refresh token generation failed: %w", err)
	}

	refreshToken := &user.RefreshToken{
		UserID:    u.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().AddDate(0, 0, ac.config.JWT.RefreshTokenExpiryDays),
	}
	if err := ac.repo.SaveRefreshToken(refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return accessToken, refreshTokenString, nil
}

// Register godoc
// @Summary Register a new user
// @Description Create an account. Role defaults to trainer; registering a player provisions attendance for upcoming events.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} utils.ValidationErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := make(map[string]interface{})
		for k, v := range validator.ParseError(err) {
			fields[k] = v
		}
		utils.ValidationErrorJSON(c, "Invalid input", fields)
		return
	}

	if _, err := ac.repo.GetUserByEmail(req.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ConflictJSON(c, "User with this email already exists")
		return
	}

	role := req.Role
	if role == "" {
		role = string(rbac.DefaultRole)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	u := &user.User{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   hashed,
		Role:       role,
		IsApproved: true,
		Active:     true,
	}
	if err := ac.repo.CreateUser(u); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	if u.Role == string(rbac.RolePlayer) {
		created, err := ac.provisioner.ForPlayer(u, u.ID)
		if err != nil {
			log.Printf("user %d: attendance provisioning failed: %v", u.ID, err)
		} else {
			log.Printf("user %d: provisioned %d attendance records", u.ID, created)
		}
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.FilterUserRecord(u),
	})
}

// Login godoc
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(c, "Invalid input: "+err.Error())
		return
	}

	u, err := ac.repo.GetUserByEmail(req.Email)
	if err != nil || !utils.CheckPassword(u.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid email or password"})
		return
	}
	if !u.Active {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Account is deactivated"})
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.FilterUserRecord(u),
	})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for new tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(c, "Invalid input: "+err.Error())
		return
	}

	claims, err := token.ValidateJWT(req.RefreshToken, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid refresh token: " + err.Error()})
		return
	}
	stored, err := ac.repo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Refresh token not recognized or revoked"})
		return
	}

	u, err := ac.repo.GetUserByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "User not found"})
		return
	}

	// Rotate: the presented token is single-use.
	if err := ac.repo.InvalidateRefreshToken(stored.Token); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.FilterUserRecord(u),
	})
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Success 200 {object} user.UserResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/me [get]
// @Security Bearer
func (ac *AuthController) GetProfile(c *gin.Context) {
	actor, ok := common.MustActor(c)
	if !ok {
		return
	}
	u, err := ac.repo.GetUserByID(actor.ID)
	if err != nil {
		utils.GuardErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, user.FilterUserRecord(u))
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Description Also revokes all existing refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/change-password [post]
// @Security Bearer
func (ac *AuthController) ChangePassword(c *gin.Context) {
	actor, ok := common.MustActor(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(c, "Invalid input: "+err.Error())
		return
	}

	u, err := ac.repo.GetUserByID(actor.ID)
	if err != nil {
		utils.GuardErrorJSON(c, err)
		return
	}
	if !utils.CheckPassword(u.Password, req.OldPassword) {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Old password is incorrect"})
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}
	u.Password = hashed
	if err := ac.repo.UpdateUser(u); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}
	if err := ac.repo.InvalidateAllRefreshTokensForUser(u.ID); err != nil {
		log.Printf("user %d: failed to revoke refresh tokens after password change: %v", u.ID, err)
	}

	utils.SuccessJSON(c, http.StatusOK, "Password changed successfully", nil)
}
