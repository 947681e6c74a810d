package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	sql "forecast-server/src/db/sql"
	"forecast-server/src/models"
	"forecast-server/src/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func signToken(userID int, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(time.Hour * 168).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func Register(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Username = strings.TrimSpace(req.Username)

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			util.RespondError(w, http.StatusBadRequest, "invalid email format")
			return
		}

		if !util.ValidateUsername(req.Username) {
			log.Printf("ERROR: Username validation failed during registration - Username: %s", req.Username)
			util.RespondError(w, http.StatusBadRequest, "username must be between 3 and 30 characters")
			return
		}

		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Username: %s", req.Username)
			util.RespondError(w, http.StatusBadRequest, "password must be at least 8 characters with uppercase, lowercase, digit, and special character")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for user %s: %v", req.Username, err)
			util.RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp, err := sql.CreateUser(req, string(hashedPassword), pool)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				log.Printf("ERROR: Registration failed - email or username already exists - Email: %s, Username: %s", req.Email, req.Username)
				util.RespondError(w, http.StatusConflict, "email or username already exists")
				return
			}
			log.Printf("ERROR: Failed to create user %s: %v", req.Username, err)
			util.RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		log.Printf("INFO: Successful registration - User: %s, ID: %d", resp.Username, resp.ID)

		tokenString, err := signToken(resp.ID, resp.Username)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for user %s: %v", resp.Username, err)
			util.RespondError(w, http.StatusInternalServerError, "error generating token")
			return
		}

		util.RespondOK(w, http.StatusCreated, map[string]string{"token": tokenString}, "registered")
	}
}

func Login(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			UsernameOrEmail string `json:"username"`
			Password        string `json:"password"`
		}

		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		user, err := sql.GetUserByUsername(strings.ToLower(credentials.UsernameOrEmail), pool)
		if err != nil {
			user, err = sql.GetUserByEmail(strings.ToLower(credentials.UsernameOrEmail), pool)
			if err != nil {
				log.Printf("ERROR: Failed to find user during login - Username/Email: %s: %v", credentials.UsernameOrEmail, err)
				util.RespondError(w, http.StatusUnauthorized, "user not found")
				return
			}
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for username/email %s from IP %s",
				credentials.UsernameOrEmail, r.RemoteAddr)
			util.RespondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		tokenString, err := signToken(user.ID, user.Username)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for user %s: %v", user.Username, err)
			util.RespondError(w, http.StatusInternalServerError, "error generating token")
			return
		}

		log.Printf("INFO: Successful login - User: %s, ID: %d", user.Username, user.ID)
		util.RespondOK(w, http.StatusOK, map[string]string{"token": tokenString}, "logged in")
	}
}
