package handlers

import (
	"errors"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateMemorialRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type MemorialResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorID   uint   `json:"creator_id"`
}

func CreateMemorial(ctx *gin.Context) {
	var body CreateMemorialRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	memorial := models.Memorial{
		Title:       body.Title,
		Description: body.Description,
		CreatorID:   userID,
	}

	if err := db.DB.Create(&memorial).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create memorial"})
		return
	}

	ctx.JSON(http.StatusCreated, MemorialResponse{
		ID:          memorial.ID,
		Title:       memorial.Title,
		Description: memorial.Description,
		CreatorID:   memorial.CreatorID,
	})
}

func GetMemorial(ctx *gin.Context) {
	var memorial models.Memorial

	if err := db.DB.Where("id = ?", ctx.Param("memorial_id")).First(&memorial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Memorial not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve memorial"})
		}
		return
	}

	ctx.JSON(http.StatusOK, MemorialResponse{
		ID:          memorial.ID,
		Title:       memorial.Title,
		Description: memorial.Description,
		CreatorID:   memorial.CreatorID,
	})
}
