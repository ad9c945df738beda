package main

import (
	"context"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/Roshan11032005/nutri-backend/config"
	"github.com/Roshan11032005/nutri-backend/controllers"
	"github.com/Roshan11032005/nutri-backend/routes"
	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

func main() {
	config.LoadEnv()

	// The signing keypair is a hard precondition: generated on first run,
	// fatal on any other failure.
	privateKey, err := utils.LoadOrGenerateKeys("keys")
	if err != nil {
		log.Fatalf("signing key setup failed: %v", err)
	}
	tokens := utils.NewTokenService(privateKey)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	rdb, err := config.InitRedis()
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("AWS config load failed: %v", err)
	}

	mailer := utils.NewSESMailer(ses.NewFromConfig(awsCfg))
	images := utils.NewImageStore(s3.NewFromConfig(awsCfg))

	otpService := services.NewOTPService(rdb, mailer)
	authService := services.NewAuthService(db, rdb, tokens, otpService)
	edamam := services.NewEdamamService()
	rek := services.NewRekognitionService(rekognition.NewFromConfig(awsCfg))
	foodService := services.NewFoodService(db, edamam, rek, images)
	userService := services.NewUserService(db)

	r := routes.SetupRouter(routes.Deps{
		Tokens:       tokens,
		Redis:        rdb,
		Auth:         controllers.NewAuthController(authService),
		OTP:          controllers.NewOTPController(authService),
		Registration: controllers.NewRegistrationController(authService),
		Food:         controllers.NewFoodController(foodService),
		User:         controllers.NewUserController(userService),
		Health:       controllers.NewHealthController(db),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
