package main

import (
	"errors"
	"net/http"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"prepdesk/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func courseAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/courses", func(ctx *gin.Context) {
			db := db.GetDb()
			var courses []models.Course
			err := db.
				Model(&models.Course{}).
				Order("created_at DESC").
				Find(&courses).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": courses, "count": len(courses)})
		}).
		POST("/courses", func(ctx *gin.Context) {
			var body types.CreateCourseRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			id, err := utils.CreateNewCourse(ctx, &body, userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		PUT("/courses/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateCourseRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var course models.Course
				if err := tx.
					Where(&models.Course{ID: params.ID}).
					First(&course).
					Error; err != nil {
					return err
				}
				updates := models.Course{}
				if body.Title != nil {
					updates.Title = *body.Title
					updates.Slug = slug.Make(*body.Title)
				}
				if body.Description != nil {
					updates.Description = body.Description
				}
				if body.Status != nil {
					updates.Status = types.CourseStatus(*body.Status)
				}
				if err := tx.
					Model(&models.Course{}).
					Where(&models.Course{ID: params.ID}).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/courses/:id/publish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := utils.PublishCourse(params.ID); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/courses/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var course models.Course
				if err := tx.
					Where(&models.Course{ID: params.ID}).
					First(&course).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Course{}).
					Where(&models.Course{ID: params.ID}).
					Update("status", types.COURSE_ARCHIVED).
					Error; err != nil {
					return err
				}
				if err := tx.Delete(&course).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
