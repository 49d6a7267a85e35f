package main

import (
	"errors"
	"net/http"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/models/scopes"
	"prepdesk/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func contentAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/faqs", func(ctx *gin.Context) {
			var body types.CreateFAQRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
			faq := models.FAQ{
				Question: body.Question,
				Answer:   body.Answer,
				Attachment: types.Attachment{
					Category: types.Category(body.Category),
					ParentID: body.ParentID,
				},
				TenantID: &tenantId,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var course models.Course
				if err := tx.Where(&models.Course{ID: body.ParentID}).First(&course).Error; err != nil {
					return errors.New("course not found")
				}
				if err := tx.Create(&faq).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": faq})
		}).
		PUT("/faqs/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateFAQRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var faq models.FAQ
				if err := tx.Scopes(scopes.WithID(params.ID)).First(&faq).Error; err != nil {
					return err
				}
				updates := models.FAQ{}
				if body.Question != nil {
					updates.Question = *body.Question
				}
				if body.Answer != nil {
					updates.Answer = *body.Answer
				}
				if err := tx.
					Model(&models.FAQ{}).
					Scopes(scopes.WithID(params.ID)).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/faqs/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := db.Scopes(scopes.WithID(params.ID)).Delete(&models.FAQ{}).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/carousel", func(ctx *gin.Context) {
			var body types.CreateCarouselItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
			item := models.CarouselItem{
				Title:    body.Title,
				ImageURL: body.ImageURL,
				Rank:     body.Rank,
				Attachment: types.Attachment{
					Category: types.Category(body.Category),
					ParentID: body.ParentID,
				},
				TenantID: &tenantId,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var course models.Course
				if err := tx.Where(&models.Course{ID: body.ParentID}).First(&course).Error; err != nil {
					return errors.New("course not found")
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": item})
		}).
		PUT("/carousel/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateCarouselItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var item models.CarouselItem
				if err := tx.Scopes(scopes.WithID(params.ID)).First(&item).Error; err != nil {
					return err
				}
				updates := models.CarouselItem{}
				if body.Title != nil {
					updates.Title = *body.Title
				}
				if body.ImageURL != nil {
					updates.ImageURL = *body.ImageURL
				}
				if body.Rank != nil {
					updates.Rank = *body.Rank
				}
				if err := tx.
					Model(&models.CarouselItem{}).
					Scopes(scopes.WithID(params.ID)).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "carousel item not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/carousel/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := db.Scopes(scopes.WithID(params.ID)).Delete(&models.CarouselItem{}).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
