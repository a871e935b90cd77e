package user

import (
	"errors"

	"github.com/team-rf/roster/internal/rbac"
	"gorm.io/gorm"
)

// UserRepository defines all database operations for users.
type UserRepository interface {
	Create(u *User) error
	GetByID(id uint) (*User, error)
	GetByIDWithChildren(id uint) (*User, error)
	GetByEmail(email string) (*User, error)
	List(filter rbac.Filter, page, limit int) ([]User, int64, error)
	Update(u *User) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error

	// FindActivePlayers returns active users with role player, bounded by
	// limit. Used by the attendance provisioner.
	FindActivePlayers(limit int) ([]User, error)

	GetChildren(parentID uint) ([]User, error)
	LinkChild(parentID, childID uint) error
	UnlinkChild(parentID, childID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository backed by gorm.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(u *User) error {
	return r.db.Create(u).Error
}

func (r *userRepository) GetByID(id uint) (*User, error) {
	var u User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByIDWithChildren(id uint) (*User, error) {
	var u User
	if err := r.db.Preload("Children").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(filter rbac.Filter, page, limit int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.Model(&User{})
	for column, value := range filter {
		query = query.Where(column+" = ?", value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(u *User) error {
	return r.db.Save(u).Error
}

func (r *userRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&User{}, id).Error
}

func (r *userRepository) FindActivePlayers(limit int) ([]User, error) {
	var players []User
	err := r.db.
		Where("role = ? AND active = ?", string(rbac.RolePlayer), true).
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *userRepository) GetChildren(parentID uint) ([]User, error) {
	parent, err := r.GetByIDWithChildren(parentID)
	if err != nil {
		return nil, err
	}
	return parent.Children, nil
}

func (r *userRepository) LinkChild(parentID, childID uint) error {
	parent, err := r.GetByID(parentID)
	if err != nil {
		return err
	}
	if parent.Role != string(rbac.RoleParent) {
		return errors.New("user is not a parent")
	}
	child, err := r.GetByID(childID)
	if err != nil {
		return err
	}
	if child.Role != string(rbac.RolePlayer) {
		return errors.New("linked child must have role player")
	}
	if err := r.db.Model(parent).Association("Children").Append(child); err != nil {
		return err
	}
	// A player has at most one parent.
	return r.db.Model(child).Update("parent_id", parent.ID).Error
}

func (r *userRepository) UnlinkChild(parentID, childID uint) error {
	parent, err := r.GetByID(parentID)
	if err != nil {
		return err
	}
	child, err := r.GetByID(childID)
	if err != nil {
		return err
	}
	if err := r.db.Model(parent).Association("Children").Delete(child); err != nil {
		return err
	}
	return r.db.Model(child).Update("parent_id", nil).Error
}
