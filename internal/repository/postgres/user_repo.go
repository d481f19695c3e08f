package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(user *entity.User) error {
	return r.db.Create(user).Error
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update обновляет информацию о пользователе
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// UpdatePassword обновляет пароль пользователя.
// Хеширование выполняется хуком BeforeSave на сущности, поэтому здесь
// используется Model+Update, а не raw SQL.
func (r *UserRepo) UpdatePassword(userID uint, newPassword string) error {
	user, err := r.GetByID(userID)
	if err != nil {
		return err
	}
	user.Password = newPassword
	return r.db.Save(user).Error
}

// IncrementVideoTestsDone атомарно увеличивает счётчик пройденных видеотестов
func (r *UserRepo) IncrementVideoTestsDone(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("video_tests_done", gorm.Expr("video_tests_done + ?", 1)).
		Error
}

// IncrementLawTestsDone атомарно увеличивает счётчик пройденных тестов по Правилам
func (r *UserRepo) IncrementLawTestsDone(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("law_tests_done", gorm.Expr("law_tests_done + ?", 1)).
		Error
}

// List возвращает список пользователей с пагинацией
func (r *UserRepo) List(limit, offset int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Limit(limit).Offset(offset).Order("id").Find(&users).Error
	return users, err
}
