package main

import (
	"net/http"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func settingsAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PUT("/settings", func(ctx *gin.Context) {
			var body types.CreateSettingRequestBody
			err := ctx.ShouldBindJSON(&body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				setting := models.Setting{
					SettingKey:   body.Key,
					SettingValue: types.JSONBAny{Inner: body.Value},
					Group:        body.Group,
				}
				// Writing an existing (key, group) pair replaces its value.
				if err := tx.
					Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "setting_key"}, {Name: "group"}},
						DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
					}).
					Create(&setting).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/settings", func(ctx *gin.Context) {
			var settings []models.Setting
			db := db.GetDb()
			err := db.Find(&settings).Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": settings})
		})
	return g
}
