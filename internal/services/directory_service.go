package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// directoryService handles the people and shops transactions reference.
type directoryService struct {
	db *gorm.DB
}

// NewDirectoryService creates a new DirectoryServicer.
func NewDirectoryService(db *gorm.DB) DirectoryServicer {
	return &directoryService{db: db}
}

// CreatePerson creates a person together with their shadow debt account,
// which debt and repayment transactions settle against.
func (s *directoryService) CreatePerson(userID, name, note string) (*models.Person, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person name is required")
	}

	person := &models.Person{UserID: userID, Name: name, Note: note}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		account := &models.Account{
			UserID:   &userID,
			Name:     name,
			Type:     models.AccountTypeDebt,
			IsActive: true,
			PersonID: &person.ID,
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		person.AccountID = &account.ID
		if err := tx.Model(person).Update("account_id", account.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

// GetPersonByID retrieves a person by id for a specific user.
func (s *directoryService) GetPersonByID(userID, personID string) (*models.Person, error) {
	var person models.Person
	if err := s.db.Where("id = ? AND user_id = ?", personID, userID).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

// GetUserPeople retrieves a paginated list of the user's people.
func (s *directoryService) GetUserPeople(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	page.Defaults()

	base := s.db.Model(&models.Person{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var people []models.Person
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&people).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(people, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateShop creates a new shop.
func (s *directoryService) CreateShop(userID, name, address string) (*models.Shop, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shop name is required")
	}

	shop := &models.Shop{UserID: userID, Name: name, Address: address}
	if err := s.db.Create(shop).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return shop, nil
}

// GetShopByID retrieves a shop by id for a specific user.
func (s *directoryService) GetShopByID(userID, shopID string) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.Where("id = ? AND user_id = ?", shopID, userID).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShopNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &shop, nil
}

// GetUserShops retrieves a paginated list of the user's shops.
func (s *directoryService) GetUserShops(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Shop], error) {
	page.Defaults()

	base := s.db.Model(&models.Shop{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var shops []models.Shop
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&shops).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(shops, page.Page, page.PageSize, totalItems)
	return &result, nil
}
