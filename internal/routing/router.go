package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"library-admin/internal/config"
	"library-admin/internal/managers"
	"library-admin/internal/middleware"
	"library-admin/internal/routing/handlers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
	"library-admin/internal/web"
)

func InitRouter(cfg *config.Config, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) (*gin.Engine, error) {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Handlers pass the gin context to the managers, cancellation comes from the request
	router.ContextWithFallback = true
	// ClientIP keys the login limiter, forwarded headers only count from configured proxies
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	// Initialize middleware
	setupCommonMiddleware(router, cfg)
	// Setup routes
	setupRoutes(router, cfg, databaseMgr, mailMgr, jwtMgr)

	return router, nil
}

func setupCommonMiddleware(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Accept", "Content-Type", "X-CSRF-Token"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Trace-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
	if cfg.CSRFSecret != "" {
		router.Use(middleware.CSRF([]byte(cfg.CSRFSecret), cfg.SecureCookies))
	} else {
		utils.LogMessage("warn", "CSRF_SECRET not set, forms are not CSRF protected")
	}
}

func setupRoutes(router *gin.Engine, cfg *config.Config, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) {
	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		// Acquire and release a pooled connection
		if err := databaseMgr.Ping(c); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		c.String(http.StatusOK, "OK")
	})

	var verifyEmail func(string) bool
	if cfg.VerifyEmail {
		verifyEmail = utils.GetValidator().VerifyEmail
	}

	authMgr := managers.NewAuthManager(databaseMgr, cfg.Session.Lifetime)
	catalogMgr := managers.NewCatalogManager(databaseMgr)
	memberMgr := managers.NewMemberManager(databaseMgr, verifyEmail)
	loanMgr := managers.NewLoanManager(databaseMgr)
	fineMgr := managers.NewFineManager(databaseMgr)

	// Set up auth routes
	authHdl := handlers.NewAuthHandler(authMgr, jwtMgr, cfg.SecureCookies)
	loginLimiter := middleware.NewLoginLimiter(cfg.LoginRatePerMinute)
	authRoutes(router, authHdl, loginLimiter)

	// The following routes require a session
	sessionRouter := router.Group("/")
	sessionRouter.Use(middleware.RequireSession(jwtMgr))
	sessionRouter.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/books")
	})

	bookRoutes(sessionRouter.Group("/books"), handlers.NewBookHandler(catalogMgr))
	userRoutes(sessionRouter.Group("/users"), handlers.NewUserHandler(memberMgr))
	issueRoutes(sessionRouter.Group("/issues"), handlers.NewIssueHandler(catalogMgr, memberMgr, loanMgr))
	fineRoutes(sessionRouter.Group("/fines"), handlers.NewFineHandler(fineMgr, mailMgr))
}

func authRoutes(router *gin.Engine, authHdl handlers.AuthHdl, loginLimiter *middleware.LoginLimiter) {
	router.GET("/login", authHdl.ShowLogin)
	router.POST("/login", loginLimiter.Middleware(), middleware.ValidateAndSanitizeForm[schemas.LoginRequest]("/login"), authHdl.Login)
	router.POST("/logout", authHdl.Logout)
}

func bookRoutes(bookRouter *gin.RouterGroup, bookHdl handlers.BookHdl) {
	bookRouter.GET("", bookHdl.ListBooks)
	bookRouter.POST("", middleware.ValidateAndSanitizeForm[schemas.BookRequest]("/books"), bookHdl.AddBook)
	bookRouter.POST("/delete", middleware.ValidateAndSanitizeForm[schemas.DeleteRequest]("/books"), bookHdl.DeleteBook)
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl) {
	userRouter.GET("", userHdl.ListUsers)
	userRouter.POST("", middleware.ValidateAndSanitizeForm[schemas.MemberRequest]("/users"), userHdl.AddUser)
	userRouter.POST("/delete", middleware.ValidateAndSanitizeForm[schemas.DeleteRequest]("/users"), userHdl.DeleteUser)
}

func issueRoutes(issueRouter *gin.RouterGroup, issueHdl handlers.IssueHdl) {
	issueRouter.GET("", issueHdl.ShowIssues)
	issueRouter.POST("", middleware.ValidateAndSanitizeForm[schemas.IssueRequest]("/issues"), issueHdl.IssueBook)
	issueRouter.POST("/return", middleware.ValidateAndSanitizeForm[schemas.ReturnRequest]("/issues"), issueHdl.ReturnBook)
}

func fineRoutes(fineRouter *gin.RouterGroup, fineHdl handlers.FineHdl) {
	fineRouter.GET("", fineHdl.ShowFines)
	fineRouter.POST("", middleware.ValidateAndSanitizeForm[schemas.FineRequest]("/fines"), fineHdl.AddFine)
	fineRouter.POST("/update", middleware.ValidateAndSanitizeForm[schemas.UpdateFineRequest]("/fines"), fineHdl.UpdateFine)
}
