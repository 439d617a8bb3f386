package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/NaghamProgrammer/Ubrary/internal/config"
	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/handlers"
	"github.com/NaghamProgrammer/Ubrary/internal/middleware"
	"github.com/NaghamProgrammer/Ubrary/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// checkOrCreateDir makes sure dirPath exists and is a directory, creating it
// when missing. Any other outcome is fatal at startup.
func checkOrCreateDir(dirPath string) {
	if dirPath == "" || dirPath == "/" || dirPath == "." {
		log.Fatalf("unsafe directory path: %q", dirPath)
	}

	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			log.Fatalf("could not create directory %s: %v", dirPath, err)
		}
		log.Printf("created directory %s", dirPath)
		return
	}
	if err != nil {
		log.Fatalf("could not stat %s: %v", dirPath, err)
	}
	if !info.IsDir() {
		log.Fatalf("path %s exists but is not a directory", dirPath)
	}
}

func main() {
	cfg := config.Load()

	checkOrCreateDir(filepath.Dir(cfg.DBPath))

	if err := database.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("database init: %v", err)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatalf("set trusted proxies: %v", err)
	}
	router.MaxMultipartMemory = 10 << 20

	store := cookie.NewStore([]byte(cfg.CookieSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})
	router.Use(sessions.Sessions("ubrary_session", store))

	router.LoadHTMLGlob("web/templates/*")
	router.Static("/static", "web/static")

	var mailer *services.Mailer
	if cfg.MailerConfigured() {
		mailer = services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)
		log.Printf("reset mail delivery enabled via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		log.Println("SMTP not configured, reset tokens will not be mailed")
	}
	reset := &handlers.ResetHandler{
		Tokens: services.NewResetTokenStore(cfg.ResetTokenTTL),
		Mailer: mailer,
		Debug:  cfg.Debug,
	}
	if cfg.Debug {
		log.Println("WARNING: debug mode returns reset tokens in HTTP responses")
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	registerRoutes(router, reset, authLimiter)

	listenAddr := ":" + cfg.ListenPort
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func registerRoutes(router *gin.Engine, reset *handlers.ResetHandler, authLimiter *middleware.RateLimiter) {
	// Open API endpoints.
	api := router.Group("/api")
	{
		api.POST("/signup/", handlers.HandleSignup)
		api.POST("/login/", authLimiter.Middleware(), handlers.HandleLogin)
		api.GET("/search/", handlers.HandleSearch)
		api.POST("/email-exists/", handlers.HandleEmailExists)
		api.POST("/password-reset-request/", authLimiter.Middleware(), reset.HandleResetRequest)
		api.POST("/password-reset-confirm/", reset.HandleResetConfirm)
	}

	// Authenticated API endpoints.
	authed := router.Group("/api")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/logout/", handlers.HandleLogout)
		authed.GET("/user/me/", handlers.HandleCurrentUser)

		authed.GET("/books/", handlers.HandleListBooks)
		authed.GET("/books/available/", handlers.HandleAvailableBooks)
		authed.GET("/books/:id/", handlers.HandleGetBook)

		authed.GET("/borrowed-books/", handlers.HandleListBorrowedBooks)
		authed.POST("/borrowed-books/", handlers.HandleBorrowBook)
		authed.PATCH("/borrowed-books/", handlers.HandleReturnBook)

		authed.GET("/favorite-books/", handlers.HandleListFavorites)
		authed.POST("/favorite-books/", handlers.HandleAddFavorite)
		authed.DELETE("/favorite-books/:book_id/", handlers.HandleRemoveFavorite)
	}

	// Admin API endpoints.
	admin := router.Group("/api")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/categories/", handlers.HandleListCategories)
		admin.POST("/categories/", handlers.HandleCreateCategory)
		admin.GET("/categories/:id/", handlers.HandleGetCategory)
		admin.PUT("/categories/:id/", handlers.HandleUpdateCategory)
		admin.DELETE("/categories/:id/", handlers.HandleDeleteCategory)

		admin.GET("/users/", handlers.HandleListUsers)
		admin.POST("/users/", handlers.HandleAdminCreateUser)
		admin.GET("/users/:id/", handlers.HandleGetUser)
		admin.PUT("/users/:id/", handlers.HandleAdminUpdateUser)
		admin.DELETE("/users/:id/", handlers.HandleAdminDeleteUser)

		admin.GET("/admin/users/", handlers.HandleListUsers)
		admin.POST("/admin/users/", handlers.HandleAdminCreateUser)
		admin.GET("/admin/users/:id/", handlers.HandleGetUser)
		admin.PUT("/admin/users/:id/", handlers.HandleAdminUpdateUser)
		admin.DELETE("/admin/users/:id/", handlers.HandleAdminDeleteUser)

		admin.GET("/admin/books/", handlers.HandleListBooks)
		admin.POST("/admin/books/", handlers.HandleAdminCreateBook)
		admin.GET("/admin/books/:id/", handlers.HandleGetBook)
		admin.PUT("/admin/books/:id/", handlers.HandleAdminUpdateBook)
		admin.DELETE("/admin/books/:id/", handlers.HandleAdminDeleteBook)
	}

	// Server-rendered pages.
	router.GET("/", handlers.ShowIndexPage)
	router.GET("/search/", handlers.ShowSearchResultsPage)

	pages := router.Group("/")
	pages.Use(middleware.PageAuthRequired())
	{
		pages.GET("/user/", handlers.ShowUserPage)
		pages.GET("/admin/", handlers.ShowAdminPage)
		pages.GET("/borrowed-books/", handlers.ShowBorrowedBooksPage)
		pages.GET("/favorite-books/", handlers.ShowFavoriteBooksPage)
	}
}
