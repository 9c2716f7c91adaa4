package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"quill/internal/auth"
	"quill/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// Post routes: reads take an optional identity so authors can see their
	// own drafts, writes require one.
	required := auth.Required(jwtService)
	optional := auth.Optional(jwtService)

	posts := api.Group("/posts")
	posts.GET("", postHandler.List, optional)
	posts.GET("/:id", postHandler.Get, optional)
	posts.POST("", postHandler.Create, required)
	posts.PUT("/:id", postHandler.Update, required)
	posts.DELETE("/:id", postHandler.Delete, required)
	posts.POST("/:id/publish", postHandler.Publish, required)
	posts.POST("/:id/unpublish", postHandler.Unpublish, required)

	// Profile routes
	me := api.Group("/me", required)
	me.GET("", userHandler.Me)
	me.PUT("", userHandler.UpdateMe)
	me.DELETE("", userHandler.DeleteMe)
	me.GET("/posts", userHandler.MyPosts)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
