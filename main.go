package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"property-pulse-server/routes"
	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

func main() {
	godotenv.Load()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is required")
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "propertypulse"
	}

	store, err := storage.Connect(context.Background(), mongoURI, dbName)
	if err != nil {
		log.Fatalf("error connecting to db: %v", err)
	}
	defer store.Close(context.Background())

	rdb := storage.NewRedis()
	media := storage.NewMediaStore()

	propertyHandler := &routes.PropertyHandler{
		Properties: storage.NewPropertyStore(store),
		Users:      storage.NewUserStore(store),
		Media:      media,
	}
	userHandler := &routes.UserHandler{
		Users: storage.NewUserStore(store),
		Redis: rdb,
	}
	messageHandler := &routes.MessageHandler{
		Messages: storage.NewMessageStore(store),
	}

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", userHandler.Register)
		user.Post("/login", userHandler.Login)
		user.Post("/google", userHandler.GoogleLoginOrSignUp)
		user.Get("/{id}", userHandler.GetUser)
		user.Get("/{id}/properties", accessTokenVerifierMiddleware, utils.UserIDMiddleware, propertyHandler.GetPropertiesByOwner)
	}

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, propertyHandler.CreateProperty)
		property.Get("/{id}", propertyHandler.GetProperty)
		property.Post("/update/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, propertyHandler.UpdateProperty)
		property.Delete("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, propertyHandler.DeleteProperty)
	}

	properties := app.Party("/api/properties")
	{
		properties.Get("/", propertyHandler.GetAllProperties)
		properties.Get("/latest", propertyHandler.GetLatestProperties)
		properties.Get("/search", propertyHandler.SearchProperties)
	}

	bookmarks := app.Party("/api/bookmarks", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		bookmarks.Post("/toggle", propertyHandler.ToggleBookmark)
		bookmarks.Get("/check", propertyHandler.CheckBookmark)
		bookmarks.Get("/saved", propertyHandler.GetSavedProperties)
	}

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		messages.Post("/", messageHandler.SendMessage)
		messages.Get("/", messageHandler.ListMessages)
		messages.Patch("/{id}/read", messageHandler.MarkMessageRead)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, userHandler.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	if err := app.Listen("0.0.0.0:" + port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
