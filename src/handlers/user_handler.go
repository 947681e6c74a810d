package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	db "forecast-server/src/db"
	sql "forecast-server/src/db/sql"
	"forecast-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func GetUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		requestedUserID := chi.URLParam(r, "user_id")

		parsedUserID, err := strconv.ParseInt(requestedUserID, 10, 64)
		if err != nil {
			log.Printf("ERROR: Failed to parse user_id from URL - user_id: %s: %v", requestedUserID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		if userID != parsedUserID {
			log.Printf("ERROR: Unauthorized user access attempt - Authenticated user: %d, Requested user: %d", userID, parsedUserID)
			util.RespondError(w, http.StatusForbidden, "forbidden")
			return
		}

		user, err := sql.GetUserByID(int(userID), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get user - user_id: %d: %v", userID, err)
			util.RespondError(w, http.StatusNotFound, "user not found")
			return
		}

		util.RespondOK(w, http.StatusOK, user, "")
	}
}

func UpdateUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update user request body: %v", err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during user update - Email: %s, User: %d", req.Email, userID)
			util.RespondError(w, http.StatusBadRequest, "invalid email format")
			return
		}

		user, err := sql.UpdateUser(int(userID), req.Email, req.FirstName, req.LastName, pool)
		if err != nil {
			log.Printf("ERROR: Failed to update user profile - user_id: %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		log.Printf("INFO: User profile updated - User: %d", userID)
		util.RespondOK(w, http.StatusOK, user, "profile updated successfully")
	}
}

func ChangePassword(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode change password request body: %v", err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		user, err := sql.GetUserByID(int(userID), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get user for password change - user_id: %d: %v", userID, err)
			util.RespondError(w, http.StatusNotFound, "user not found")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Printf("ERROR: Invalid current password attempt for user %d", userID)
			util.RespondError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			log.Printf("ERROR: Password validation failed during change password - User: %d", userID)
			util.RespondError(w, http.StatusBadRequest, "password must be at least 8 characters with uppercase, lowercase, digit, and special character")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash new password for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := sql.UpdateUserPassword(int(userID), string(hashedPassword), pool); err != nil {
			log.Printf("ERROR: Failed to update user password - user_id: %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		log.Printf("INFO: User password changed - User: %d", userID)
		util.RespondOK(w, http.StatusOK, nil, "password changed successfully")
	}
}

func DeleteUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		// Only allow a user to delete themselves; the body must repeat the
		// id as a confirmation.
		var req struct {
			UserID int64 `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode delete user request body for user_id: %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.UserID != userID {
			log.Printf("ERROR: Forbidden delete attempt - Authenticated user: %d, Requested user: %d", userID, req.UserID)
			util.RespondError(w, http.StatusForbidden, "forbidden")
			return
		}

		log.Printf("INFO: Deleting user %d and all associated data", userID)
		if err := sql.DeleteUser(int(userID), pool); err != nil {
			log.Printf("ERROR: Failed to delete user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to delete user")
			return
		}

		db.ClearAllScenarioCaches()
		db.ClearAllProjectionCaches()
		log.Printf("INFO: User %d deleted successfully", userID)
		util.RespondOK(w, http.StatusOK, map[string]string{"redirect": "/register"}, "user deleted")
	}
}
