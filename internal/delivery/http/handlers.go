package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mclrc/microblog/internal/domain"
	"github.com/mclrc/microblog/internal/middleware"
	"github.com/mclrc/microblog/internal/usecase"
	"github.com/mclrc/microblog/internal/validation"
)

type Handler struct {
	authUsecase *usecase.AuthUsecase
	postUsecase *usecase.PostUsecase
	userRepo    domain.UserRepository
	eventRepo   domain.LoginEventRepository
}

func NewHandler(auth *usecase.AuthUsecase, post *usecase.PostUsecase, userRepo domain.UserRepository, eventRepo domain.LoginEventRepository) *Handler {
	return &Handler{
		authUsecase: auth,
		postUsecase: post,
		userRepo:    userRepo,
		eventRepo:   eventRepo,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Errors validation.Errors `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusBadRequest, validationResponse{Errors: errs})
}

// Auth handlers

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Run(
		validation.Field("username", req.Username, validation.Length(4, 20)),
		validation.Field("email", req.Email, validation.Email()),
		validation.Field("password", req.Password, validation.Length(8, 64)),
	); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	user, tokens, err := h.authUsecase.Register(req.Username, req.Email, req.Password)
	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		writeMessage(w, http.StatusBadRequest, "A user with this "+dup.Field+" already exists")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.recordLogin(r, user, "register")
	writeJSON(w, http.StatusOK, tokens)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Run(
		validation.Field("username", req.Username, validation.Required()),
		validation.Field("password", req.Password, validation.Required()),
	); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	user, tokens, err := h.authUsecase.Login(req.Username, req.Password)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid password and/or username")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.recordLogin(r, user, "password")
	writeJSON(w, http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Run(
		validation.Field("refreshToken", req.RefreshToken, validation.Required()),
	); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	token, err := h.authUsecase.Refresh(req.RefreshToken, h.authUsecase.AccessExpiry())
	if errors.Is(err, usecase.ErrInvalidToken) {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Token: token})
}

type deleteUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Run(
		validation.Field("username", req.Username, validation.Required()),
		validation.Field("password", req.Password, validation.Required()),
	); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	err := h.authUsecase.DeleteUser(req.Username, req.Password)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid password and/or username")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Cannot delete user")
		return
	}

	writeMessage(w, http.StatusOK, "User deleted successfully")
}

type userProfile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.userRepo.GetByID(id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "User does not exist")
		return
	}

	writeJSON(w, http.StatusOK, userProfile{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *Handler) GetLogins(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Login required")
		return
	}

	user, err := h.userRepo.GetByName(username)
	if err != nil || user == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user")
		return
	}

	events, err := h.eventRepo.ListByUser(user.ID, 20, 0)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list logins")
		return
	}
	if events == nil {
		events = []*domain.LoginEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}

// Post handlers

type createPostRequest struct {
	Message string `json:"message"`
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Run(
		validation.Field("message", req.Message, validation.Length(0, 256)),
	); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.postUsecase.CreatePost(username, req.Message)
	if errors.Is(err, usecase.ErrUserNotFound) {
		writeMessage(w, http.StatusBadRequest, "Invalid user")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Cannot create post")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	post, err := h.postUsecase.GetPost(id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to get post")
		return
	}
	if post == nil {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Login required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	err = h.postUsecase.DeletePost(id, username)
	if errors.Is(err, usecase.ErrNotPostAuthor) || errors.Is(err, usecase.ErrUserNotFound) {
		writeMessage(w, http.StatusBadRequest, "Cannot delete post")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// recordLogin is best effort; an audit write must never fail the login.
func (h *Handler) recordLogin(r *http.Request, user *domain.User, method string) {
	if h.eventRepo == nil {
		return
	}
	_ = h.eventRepo.Create(&domain.LoginEvent{
		UserID:     user.ID,
		AuthMethod: method,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
}
