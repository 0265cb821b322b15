package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// categoryService handles category-related business logic, including the
// system categories the ledger resolves by name (Refund, Repayment, the
// discount fallbacks).
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	category := &models.Category{
		UserID:      &userID,
		Name:        name,
		Type:        categoryType,
		Description: description,
		Icon:        icon,
		Color:       color,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user,
// system categories included.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? OR is_system = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by id. System categories are visible
// to every user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND (user_id = ? OR is_system = ?)", categoryID, userID, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ResolveSystemCategory finds a well-known category by name and type,
// preferring one the user created over the globally seeded system row.
func (s *categoryService) ResolveSystemCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("name = ? AND type = ? AND (user_id = ? OR is_system = ?)", name, categoryType, userID, true).
		Order("is_system").
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrSystemCategoryMissing, "system category "+name+" is not configured")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ResolveDiscountCategory resolves the category that tracks cashback given
// away. Resolution order: explicit override id, then the ordered well-known
// name list, then any expense category. Failing all three is fatal for the
// caller: a cashback line with no category would corrupt reporting totals.
func (s *categoryService) ResolveDiscountCategory(userID string, overrideID *string) (*models.Category, error) {
	if overrideID != nil {
		return s.GetCategoryByID(userID, *overrideID)
	}

	for _, name := range models.DiscountCategoryNames {
		category, err := s.ResolveSystemCategory(userID, name, models.CategoryTypeExpense)
		if err == nil {
			return category, nil
		}
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrSystemCategoryMissing.Code {
			return nil, err
		}
	}

	// Last resort: any expense category the user can see.
	var category models.Category
	err := s.db.Where("type = ? AND (user_id = ? OR is_system = ?)", models.CategoryTypeExpense, userID, true).
		Order("is_system, created_at").
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrSystemCategoryMissing, "no discount category could be resolved")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
