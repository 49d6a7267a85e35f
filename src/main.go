package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"prepdesk/src/boot"
	"prepdesk/src/config"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/middlewares"
	"prepdesk/src/models"
	"prepdesk/src/models/scopes"
	"prepdesk/src/types"
	"prepdesk/src/utils"
	"regexp"
	"strconv"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

var slotDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	today := time.Now().Truncate(24 * time.Hour)
	return !datetime.Before(today)
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	if field.Kind() == 0 || field.IsZero() {
		return true
	}
	fieldValue, ok := field.Elem().Interface().(string)
	if !ok {
		return false
	}
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	return !fielddatetime.After(datetime)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/courses", func(ctx *gin.Context) {
			db := db.GetDb()
			var courses []models.Course
			err := db.
				Model(&models.Course{}).
				Where(&models.Course{Status: types.COURSE_PUBLISHED}).
				Order("created_at DESC").
				Find(&courses).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": courses, "count": len(courses)})
		}).
		GET("/courses/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var course models.Course
			if err := db.
				Where(&models.Course{ID: params.ID, Status: types.COURSE_PUBLISHED}).
				First(&course).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": course})
		}).
		GET("/courses/:id/slots", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.SlotQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			category := types.Category(query.Category)
			cacheKey := utils.SlotsCacheKey(params.ID, category)
			rd := lib.GetRedisClient()
			if rd != nil {
				if cached, err := rd.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
					var slots []*models.ReservationSlot
					if err := json.Unmarshal([]byte(cached), &slots); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
						return
					}
				}
			}
			slots, err := utils.GetSlotsWithAvailability(params.ID, category, false)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if rd != nil {
				if raw, err := json.Marshal(slots); err == nil {
					rd.Set(context.Background(), cacheKey, raw, 30*time.Second)
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		}).
		GET("/plans", func(ctx *gin.Context) {
			var query types.AttachmentQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var plans []models.Plan
			tx := db.Model(&models.Plan{}).Scopes(scopes.WithAttachment(query.Category, query.Parent))
			if err := tx.Order("price asc").Find(&plans).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": plans, "count": len(plans)})
		}).
		GET("/faqs", func(ctx *gin.Context) {
			var query types.AttachmentQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var faqs []models.FAQ
			tx := db.Model(&models.FAQ{}).Scopes(scopes.WithAttachment(query.Category, query.Parent))
			if err := tx.Order("created_at asc").Find(&faqs).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": faqs, "count": len(faqs)})
		}).
		GET("/carousel", func(ctx *gin.Context) {
			var query types.AttachmentQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var items []models.CarouselItem
			tx := db.Model(&models.CarouselItem{}).Scopes(scopes.WithAttachment(query.Category, query.Parent))
			if err := tx.Order("rank asc").Find(&items).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
		})
	return apiv1
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := config.GetEnv()
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()

	go boot.InitBroker()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("slotdate", slotDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		reservationHandlers(authorized)
		transactionHandlers(authorized)
		slotHandlers(authorized)
		planHandlers(authorized)

		authorized.
			GET("/me", func(ctx *gin.Context) {
				rd := lib.GetRedisClient()
				userId := ctx.GetUint("id")
				cacheKey := strconv.FormatUint(uint64(userId), 10) + ":user"
				if rd != nil {
					if res, err := rd.Get(context.Background(), cacheKey).Result(); err == nil && res != "" {
						var user models.User
						if err := json.Unmarshal([]byte(res), &user); err == nil {
							ctx.JSON(http.StatusOK, gin.H{"data": user})
							return
						}
					}
				}
				db := db.GetDb()
				var user models.User
				if err := db.
					Model(&models.User{}).
					Select("id", "name", "email", "phone", "role", "email_verified", "phone_verified").
					Where(&models.User{ID: userId}).
					First(&user).
					Error; err != nil {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "No user account is associated with this session"})
					return
				}
				if rd != nil {
					go func() {
						raw, _ := json.Marshal(&user)
						if err := rd.Set(context.Background(), cacheKey, raw, time.Hour).Err(); err != nil {
							log.Printf("[redis] Error updating user cache: %s\n", err.Error())
						}
					}()
				}
				ctx.JSON(http.StatusOK, gin.H{"data": user})
			}).
			PUT("/me", func(ctx *gin.Context) {
				var body types.UpdateProfileRequestBody
				if err := ctx.ShouldBindJSON(&body); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				userId := ctx.GetUint("id")
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					updates := models.User{}
					if body.Name != nil {
						updates.Name = *body.Name
					}
					if body.Phone != nil {
						updates.Phone = *body.Phone
					}
					if err := tx.
						Model(&models.User{}).
						Where(&models.User{ID: userId}).
						Updates(&updates).
						Error; err != nil {
						return err
					}
					return nil
				})
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				rd := lib.GetRedisClient()
				if rd != nil {
					cacheKey := strconv.FormatUint(uint64(userId), 10) + ":user"
					rd.Del(context.Background(), cacheKey)
				}
				ctx.Status(http.StatusOK)
			})
	}

	admin := router.Group(path.Join(apiPrefix, "admin"))
	admin.Use(middlewares.AuthMiddleware, middlewares.RoleMiddleware(types.ROLE_ADMIN))
	{
		courseAdminHandlers(admin)
		slotAdminHandlers(admin)
		reservationAdminHandlers(admin)
		transactionAdminHandlers(admin)
		planAdminHandlers(admin)
		contentAdminHandlers(admin)
		settingsAdminHandlers(admin)
	}

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
