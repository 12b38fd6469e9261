package handler

import (
	"encoding/json"
	"net/http"
	"quizlive/internal/model"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest/middleware"
	"strconv"

	"github.com/gorilla/mux"
)

// QuizHandler handles quiz authoring endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// Create handles POST /v1/quizzes
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quiz, err := h.quizSvc.Create(r.Context(), middleware.GetClaims(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

// List handles GET /v1/quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizSvc.ListByTeacher(r.Context(), middleware.GetClaims(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /v1/quizzes/{quizKey}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizSvc.Get(r.Context(), middleware.GetClaims(r.Context()), mux.Vars(r)["quizKey"])
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// PutItem handles PUT /v1/quizzes/{quizKey}/items
func (h *QuizHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	var doc model.QuizItemDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := doc.Item()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	quiz, err := h.quizSvc.PutItem(r.Context(), middleware.GetClaims(r.Context()), mux.Vars(r)["quizKey"], item)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// RemoveItem handles DELETE /v1/quizzes/{quizKey}/items/{position}
func (h *QuizHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	position, err := strconv.Atoi(vars["position"])
	if err != nil {
		writeDomainError(w, model.InvalidField("position", "must be a number"))
		return
	}

	quiz, err := h.quizSvc.RemoveItem(r.Context(), middleware.GetClaims(r.Context()), vars["quizKey"], position)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
