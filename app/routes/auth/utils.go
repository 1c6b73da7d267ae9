package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/neptgadgets/school-nexus-final-sub000/app/config"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"golang.org/x/crypto/bcrypt"
)

const tokenCookie = "jwt_token"

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	SchoolID  string `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

// User rebuilds the signed-in user from the claims.
func (c *JWTClaims) User() *models.User {
	user := &models.User{
		ID:        c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      models.Role(c.Role),
		IsActive:  true,
	}
	if c.SchoolID != "" {
		school := c.SchoolID
		user.SchoolID = &school
	}
	return user
}

func GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		SchoolID:  user.Tenant(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.JWTTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "school-nexus",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return config.JWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
