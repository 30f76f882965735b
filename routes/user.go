package routes

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/go-redis/redis/v8"
	goJWT "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	irisJWT "github.com/kataras/iris/v12/middleware/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"property-pulse-server/models"
	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

const googleJWKSEndpoint = "https://www.googleapis.com/oauth2/v3/certs"

type UserHandler struct {
	Users *storage.UserStore
	Redis *redis.Client
}

func (h *UserHandler) Register(ctx iris.Context) {
	var userInput RegisterUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !utils.ValidatePhoneNumber(userInput.PhoneNumber) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	_, err := h.Users.FindByEmail(reqCtx, userInput.Email)
	if err == nil {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}
	if err != storage.ErrNotFound {
		log.Printf("user lookup failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	hashedPassword, err := hashAndSaltPassword(userInput.Password)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser := models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Username:    userInput.FirstName,
		Email:       strings.ToLower(userInput.Email),
		PhoneNumber: utils.NormalizePhoneNumber(userInput.PhoneNumber),
		Password:    hashedPassword,
		SocialLogin: false,
	}
	if err := h.Users.Create(reqCtx, &newUser); err != nil {
		log.Printf("user create failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	h.returnUser(&newUser, ctx)
}

func (h *UserHandler) Login(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."
	existingUser, err := h.Users.FindByEmail(ctx.Request().Context(), userInput.Email)
	if err == storage.ErrNotFound {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}
	if err != nil {
		log.Printf("user lookup failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password)) != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	h.returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp verifies a Google ID token against Google's published
// JWKS and signs the matching account in, creating it on first sight.
func (h *UserHandler) GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput GoogleUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := http.Get(googleJWKSEndpoint)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, err := keyfunc.NewJSON(body)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	token, err := goJWT.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if err != nil || !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	claims := token.Claims.(goJWT.MapClaims)
	email, _ := claims["email"].(string)
	if email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	user, err := h.Users.FindByEmail(reqCtx, email)
	if err == storage.ErrNotFound {
		givenName, _ := claims["given_name"].(string)
		familyName, _ := claims["family_name"].(string)

		newUser := models.User{
			FirstName:      givenName,
			LastName:       familyName,
			Email:          strings.ToLower(email),
			SocialLogin:    true,
			SocialProvider: "Google",
		}
		if err := h.Users.Create(reqCtx, &newUser); err != nil {
			log.Printf("user create failed: %v", err)
			utils.CreateInternalServerError(ctx)
			return
		}
		h.returnUser(&newUser, ctx)
		return
	}
	if err != nil {
		log.Printf("user lookup failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == "Google" {
		h.returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

// RefreshToken rotates a refresh token: the presented token must still be
// known to Redis and is invalidated before a fresh pair is issued.
func (h *UserHandler) RefreshToken(ctx iris.Context) {
	token := irisJWT.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	reqCtx := ctx.Request().Context()
	validToken, err := h.Redis.Get(reqCtx, tokenStr).Result()
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if validToken != "true" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	h.Redis.Del(reqCtx, tokenStr)

	tokenPair, err := utils.CreateTokenPair(reqCtx, token.StandardClaims.Subject, h.Redis)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// GetUser returns a public profile subset.
func (h *UserHandler) GetUser(ctx iris.Context) {
	id, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid user ID", ctx)
		return
	}

	user, err := h.Users.FindByID(ctx.Request().Context(), id)
	if err == storage.ErrNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		log.Printf("user %s fetch failed: %v", id.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":        user.ID.Hex(),
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	})
}

func (h *UserHandler) returnUser(user *models.User, ctx iris.Context) {
	tokenPair, err := utils.CreateTokenPair(ctx.Request().Context(), user.ID.Hex(), h.Redis)
	if err != nil {
		log.Printf("token pair creation failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID.Hex(),
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

func hashAndSaltPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type RegisterUserInput struct {
	FirstName   string `json:"firstName" validate:"required,max=256"`
	LastName    string `json:"lastName" validate:"required,max=256"`
	Email       string `json:"email" validate:"required,max=256,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}
