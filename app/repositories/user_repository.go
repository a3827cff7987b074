package repositories

import (
	"context"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User.
type UserRepository struct{ base }

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) WithTx(tx *orm.Query) *UserRepository {
	return &UserRepository{base{tx: tx}}
}

// FindByEmail looks up a user by exact email match.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.query(ctx).Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.query(ctx).Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// EmailExists reports whether an account already uses email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.query(ctx).Model(&models.User{}).Where("email = ?", email).Exists()
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.query(ctx).Create(user)
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.query(ctx).Omit(clause.Associations).Save(user)
}

// All returns users one page at a time.
func (r *UserRepository) All(ctx context.Context, page, limit int) ([]models.User, orm.Pagination, error) {
	var users []models.User
	pagination, err := r.query(ctx).Model(&models.User{}).Order("id").GetWithPagination(&users, page, limit)
	return users, pagination, err
}
