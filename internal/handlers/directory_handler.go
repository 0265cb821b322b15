package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// DirectoryHandler handles requests for people and shops.
type DirectoryHandler struct {
	directoryService services.DirectoryServicer
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directoryService services.DirectoryServicer) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// CreatePersonRequest represents the request payload for creating a person
type CreatePersonRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Note string `json:"note" binding:"max=500"`
}

// CreateShopRequest represents the request payload for creating a shop
type CreateShopRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"max=300"`
}

// CreatePerson handles the creation of a person and their shadow debt account
// @Summary     Create a person
// @Description Create a person; a shadow debt account is created alongside for debt/repayment tracking
// @Tags        directory
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePersonRequest true "Person details"
// @Success     201 {object} MessageResponse "Person created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /people [post]
func (h *DirectoryHandler) CreatePerson(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.directoryService.CreatePerson(userID, req.Name, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// GetUserPeople handles the retrieval of the user's people
// @Summary     List people
// @Tags        directory
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Person] "Paginated people"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /people [get]
func (h *DirectoryHandler) GetUserPeople(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.directoryService.GetUserPeople(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateShop handles the creation of a shop
// @Summary     Create a shop
// @Tags        directory
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateShopRequest true "Shop details"
// @Success     201 {object} MessageResponse "Shop created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /shops [post]
func (h *DirectoryHandler) CreateShop(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	shop, err := h.directoryService.CreateShop(userID, req.Name, req.Address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"shop": shop})
}

// GetUserShops handles the retrieval of the user's shops
// @Summary     List shops
// @Tags        directory
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Shop] "Paginated shops"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /shops [get]
func (h *DirectoryHandler) GetUserShops(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.directoryService.GetUserShops(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
