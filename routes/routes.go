package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Roshan11032005/nutri-backend/controllers"
	"github.com/Roshan11032005/nutri-backend/middlewares"
	"github.com/Roshan11032005/nutri-backend/utils"
)

// Deps bundles everything the router wires together. Handles are built in
// main and injected; nothing here reaches for globals.
type Deps struct {
	Tokens *utils.TokenService
	Redis  *redis.Client

	Auth         *controllers.AuthController
	OTP          *controllers.OTPController
	Registration *controllers.RegistrationController
	Food         *controllers.FoodController
	User         *controllers.UserController
	Health       *controllers.HealthController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.RequestID())

	rl := middlewares.NewRateLimiter(d.Redis)
	requireL1 := middlewares.RequireLevel1(d.Tokens)
	requireL2 := middlewares.RequireLevel2(d.Tokens, d.Redis)
	requireRefresh := middlewares.RequireRefresh(d.Tokens, d.Redis)
	requireSignup := middlewares.RequireSignup(d.Tokens)

	r.GET("/health", d.Health.Health)

	auth := r.Group("/api/auth")
	{
		auth.POST("/send_email",
			rl.PerIP("send_email", 20, time.Hour, "Too many requests from this IP. Try again later."),
			d.OTP.SendEmail)
		auth.POST("/submit_otp",
			requireL1,
			rl.PerUsername("submit_otp", 20, 24*time.Hour, "Too many OTP attempts for this user today. Try again tomorrow."),
			d.OTP.SubmitOTP)
		auth.POST("/login",
			rl.PerBodyField("login", "identifier", 10, 15*time.Minute, "Too many login attempts. Try again later."),
			d.Auth.Login)
		auth.POST("/refresh_token",
			rl.PerIP("refresh", 30, time.Hour, "Too many refresh attempts. Try again later."),
			requireRefresh,
			d.Auth.RefreshToken)
		auth.POST("/logout", requireL2, d.Auth.Logout)

		auth.POST("/signup",
			rl.PerIP("signup", 20, time.Hour, "Too many requests from this IP. Try again later."),
			d.Registration.Signup)
		auth.POST("/verify_signup",
			rl.PerIP("signup", 20, time.Hour, "Too many requests from this IP. Try again later."),
			requireSignup,
			d.Registration.VerifySignup)
	}

	food := r.Group("/api/food")
	food.Use(requireL2)
	{
		food.GET("/search", d.Food.Search)
		food.POST("/preview", d.Food.Preview)
		food.POST("/image", d.Food.AnalyzeImage)
	}

	user := r.Group("/api/user")
	user.Use(requireL2)
	{
		user.GET("/profile", d.User.GetProfile)
		user.PUT("/profile", d.User.UpdateProfile)
	}

	return r
}
