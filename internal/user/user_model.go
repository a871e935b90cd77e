package user

import (
	"time"

	"github.com/team-rf/roster/internal/rbac"
	"gorm.io/gorm"
)

// User is an actor on the team: admin, trainer, player or parent. Players may
// carry a ParentID; parents hold their players through the parent_children
// join table. Active is the soft-delete flag, inactive players are skipped by
// attendance provisioning.
type User struct {
	gorm.Model
	FirstName   string     `gorm:"not null" json:"first_name"`
	LastName    string     `gorm:"not null" json:"last_name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `json:"-"`
	Role        string     `gorm:"not null;default:trainer" json:"role"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	IsApproved  bool       `gorm:"default:true" json:"is_approved"`
	Active      bool       `gorm:"default:true" json:"active"`
	ParentID    *uint      `json:"parent_id,omitempty"`
	Children    []User     `gorm:"many2many:parent_children;joinForeignKey:parent_id;joinReferences:child_id" json:"children,omitempty"`
}

// TypedRole parses the stored role string into the closed rbac.Role enum.
func (u *User) TypedRole() (rbac.Role, error) {
	return rbac.ParseRole(u.Role)
}

// ChildIDs returns the IDs of the preloaded Children association.
func (u *User) ChildIDs() []uint {
	ids := make([]uint, 0, len(u.Children))
	for _, c := range u.Children {
		ids = append(ids, c.ID)
	}
	return ids
}

// RefreshToken stores issued refresh tokens so sessions can be revoked.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"default:false"`
}

type CreateUserRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8,max=72"`
	Role        string     `json:"role" binding:"required,oneof=admin trainer player parent"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	ParentID    *uint      `json:"parent_id,omitempty"`
}

type UpdateUserRequest struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	IsApproved  *bool      `json:"is_approved,omitempty"`
}

type LinkChildRequest struct {
	ChildID uint `json:"child_id" binding:"required"`
}

type UserResponse struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	Active      bool       `json:"active"`
	ParentID    *uint      `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FilterUserRecord(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        u.Role,
		DateOfBirth: u.DateOfBirth,
		PhoneNumber: u.PhoneNumber,
		IsApproved:  u.IsApproved,
		Active:      u.Active,
		ParentID:    u.ParentID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FilterUserRecords(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FilterUserRecord(&users[i]))
	}
	return out
}
