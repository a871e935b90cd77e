package user

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/pkg/utils"
	"gorm.io/gorm"
)

// PlayerProvisioner creates attendance records for upcoming events when a new
// player joins the roster. Implemented by the attendance package.
type PlayerProvisioner interface {
	ForPlayer(u *User, actorID uint) (int, error)
}

// UserController handles user-related HTTP requests.
type UserController struct {
	repo        UserRepository
	provisioner PlayerProvisioner
}

// NewUserController creates a new user controller.
func NewUserController(repo UserRepository, provisioner PlayerProvisioner) *UserController {
	return &UserController{repo: repo, provisioner: provisioner}
}

// ListUsers godoc
// @Summary List users
// @Description Staff see everyone; players and parents see themselves
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]UserResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Router /users [get]
// @Security Bearer
func (c *UserController) ListUsers(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	decision := rbac.CanReadUsers(actor.Role, actor.ID)
	if decision.Denied() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	users, total, err := c.repo.List(decision.Filter, page, limit)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.PaginatedJSON(ctx, FilterUserRecords(users), page, limit, total)
}

// GetUser godoc
// @Summary Get a user by ID
// @Tags users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{user_id} [get]
// @Security Bearer
func (c *UserController) GetUser(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	userID, err := userIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid user ID")
		return
	}

	decision := rbac.CanReadUsers(actor.Role, actor.ID)
	if decision.IsScoped() && userID != actor.ID {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	u, err := c.repo.GetByID(userID)
	if err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, FilterUserRecord(u))
}

// CreateUser godoc
// @Summary Create a user
// @Description Create a user of any role; creating a player provisions attendance for upcoming events
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /users [post]
// @Security Bearer
func (c *UserController) CreateUser(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}

	if _, err := c.repo.GetByEmail(req.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ConflictJSON(ctx, "User with this email already exists")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	u := &User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    hashed,
		Role:        req.Role,
		DateOfBirth: req.DateOfBirth,
		PhoneNumber: req.PhoneNumber,
		ParentID:    req.ParentID,
		IsApproved:  true,
		Active:      true,
	}
	if err := c.repo.Create(u); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	// Cascade: a new player gets a pending record for every upcoming event.
	// Failures are logged and never fail the user creation.
	if u.Role == string(rbac.RolePlayer) {
		created, err := c.provisioner.ForPlayer(u, actor.ID)
		if err != nil {
			log.Printf("user %d: attendance provisioning failed: %v", u.ID, err)
		} else {
			log.Printf("user %d: provisioned %d attendance records", u.ID, created)
		}
	}

	ctx.JSON(http.StatusCreated, FilterUserRecord(u))
}

// UpdateUser godoc
// @Summary Update a user
// @Description Admin updates anyone; other roles update only themselves
// @Tags users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param user body UpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{user_id} [put]
// @Security Bearer
func (c *UserController) UpdateUser(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	userID, err := userIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid user ID")
		return
	}

	decision := rbac.CanUpdateUser(actor.Role, actor.ID)
	if decision.IsScoped() && userID != actor.ID {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}

	fields := make(map[string]interface{})
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.DateOfBirth != nil {
		fields["date_of_birth"] = *req.DateOfBirth
	}
	// Approval and soft-delete flags are staff-controlled.
	if actor.Role.IsStaff() {
		if req.Active != nil {
			fields["active"] = *req.Active
		}
		if req.IsApproved != nil {
			fields["is_approved"] = *req.IsApproved
		}
	}
	if len(fields) == 0 {
		utils.BadRequestJSON(ctx, "no updatable fields in request")
		return
	}

	if err := c.repo.UpdateFields(userID, fields); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	u, err := c.repo.GetByID(userID)
	if err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, FilterUserRecord(u))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Admin only
// @Tags users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{user_id} [delete]
// @Security Bearer
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanDeleteUser(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}
	userID, err := userIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid user ID")
		return
	}
	if _, err := c.repo.GetByID(userID); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	if err := c.repo.Delete(userID); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "User deleted successfully", nil)
}

// GetMyChildren godoc
// @Summary List the authenticated parent's linked players
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]UserResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Router /users/me/children [get]
// @Security Bearer
func (c *UserController) GetMyChildren(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if actor.Role != rbac.RoleParent {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}
	children, err := c.repo.GetChildren(actor.ID)
	if err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Children retrieved", FilterUserRecords(children))
}

// LinkChild godoc
// @Summary Link a player to a parent
// @Tags users
// @Accept json
// @Produce json
// @Param user_id path int true "Parent user ID"
// @Param body body LinkChildRequest true "Child to link"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /users/{user_id}/children [post]
// @Security Bearer
func (c *UserController) LinkChild(ctx *gin.Context) {
	parentID, err := userIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid user ID")
		return
	}
	var req LinkChildRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}
	if err := c.repo.LinkChild(parentID, req.ChildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundJSON(ctx, "user")
		} else {
			utils.BadRequestJSON(ctx, err.Error())
		}
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Child linked", nil)
}

// UnlinkChild godoc
// @Summary Unlink a player from a parent
// @Tags users
// @Produce json
// @Param user_id path int true "Parent user ID"
// @Param child_id path int true "Child user ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{user_id}/children/{child_id} [delete]
// @Security Bearer
func (c *UserController) UnlinkChild(ctx *gin.Context) {
	parentID, err := userIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid user ID")
		return
	}
	childID, err := strconv.ParseUint(ctx.Param("child_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid child ID")
		return
	}
	if err := c.repo.UnlinkChild(parentID, uint(childID)); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Child unlinked", nil)
}

func userIDFromPath(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	return uint(id), err
}
