package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"quizlive/internal/model"
	"quizlive/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// LiveCommands is the live engine as seen by HTTP
type LiveCommands interface {
	CreateLive(ctx context.Context, cmd model.CreateLiveCommand) (*model.Live, error)
	NextPosition(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error)
	PreviousPosition(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error)
	EndLive(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error)
	AddPupilToLobby(ctx context.Context, cmd model.AddPupilCommand) (*model.Live, error)
	RemovePupilFromLobby(ctx context.Context, cmd model.RemovePupilCommand) (*model.Live, error)
	SubmitAnswer(ctx context.Context, cmd model.SubmitAnswerCommand) (*model.Live, error)
	GetLive(ctx context.Context, token, key string) (*model.Live, error)
	ListLives(ctx context.Context, token string) ([]*model.Live, error)
}

// LiveHandler handles live session endpoints. Login and code fields left
// empty in a body default to the caller's own.
type LiveHandler struct {
	lives LiveCommands
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(lives LiveCommands) *LiveHandler {
	return &LiveHandler{lives: lives}
}

// Create handles POST /v1/lives
func (h *LiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd model.CreateLiveCommand
	if !decodeOptional(w, r, &cmd) {
		return
	}
	claims := middleware.GetClaims(r.Context())
	cmd.Token = middleware.GetToken(r.Context())
	cmd.TeacherLogin, cmd.TeacherCode = defaultIdentity(cmd.TeacherLogin, cmd.TeacherCode, claims)

	live, err := h.lives.CreateLive(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, live)
}

// List handles GET /v1/lives
func (h *LiveHandler) List(w http.ResponseWriter, r *http.Request) {
	lives, err := h.lives.ListLives(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lives)
}

// Get handles GET /v1/lives/{liveKey}
func (h *LiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	live, err := h.lives.GetLive(r.Context(), middleware.GetToken(r.Context()), mux.Vars(r)["liveKey"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// Next handles POST /v1/lives/{liveKey}/next
func (h *LiveHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.teacherCommand(w, r, h.lives.NextPosition)
}

// Previous handles POST /v1/lives/{liveKey}/previous
func (h *LiveHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.teacherCommand(w, r, h.lives.PreviousPosition)
}

// End handles POST /v1/lives/{liveKey}/end
func (h *LiveHandler) End(w http.ResponseWriter, r *http.Request) {
	h.teacherCommand(w, r, h.lives.EndLive)
}

func (h *LiveHandler) teacherCommand(w http.ResponseWriter, r *http.Request, run func(context.Context, model.TeacherLiveCommand) (*model.Live, error)) {
	var cmd model.TeacherLiveCommand
	if !decodeOptional(w, r, &cmd) {
		return
	}
	cmd.Token = middleware.GetToken(r.Context())
	cmd.LiveKey = mux.Vars(r)["liveKey"]
	cmd.TeacherLogin, cmd.TeacherCode = defaultIdentity(cmd.TeacherLogin, cmd.TeacherCode, middleware.GetClaims(r.Context()))

	live, err := run(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// Join handles POST /v1/lives/{liveKey}/lobby
func (h *LiveHandler) Join(w http.ResponseWriter, r *http.Request) {
	var cmd model.AddPupilCommand
	if !decodeOptional(w, r, &cmd) {
		return
	}
	cmd.Token = middleware.GetToken(r.Context())
	cmd.LiveKey = mux.Vars(r)["liveKey"]
	cmd.PupilLogin, cmd.PupilCode = defaultIdentity(cmd.PupilLogin, cmd.PupilCode, middleware.GetClaims(r.Context()))

	live, err := h.lives.AddPupilToLobby(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// Leave handles DELETE /v1/lives/{liveKey}/lobby?pupilLogin=&pupilCode=
func (h *LiveHandler) Leave(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := model.RemovePupilCommand{
		Token:      middleware.GetToken(r.Context()),
		LiveKey:    mux.Vars(r)["liveKey"],
		PupilLogin: q.Get("pupilLogin"),
		PupilCode:  q.Get("pupilCode"),
	}
	cmd.TeacherLogin, cmd.TeacherCode = defaultIdentity(q.Get("teacherLogin"), q.Get("teacherCode"), middleware.GetClaims(r.Context()))

	live, err := h.lives.RemovePupilFromLobby(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// Answer handles POST /v1/lives/{liveKey}/answers
func (h *LiveHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var cmd model.SubmitAnswerCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd.Token = middleware.GetToken(r.Context())
	cmd.LiveKey = mux.Vars(r)["liveKey"]
	cmd.PupilLogin, cmd.PupilCode = defaultIdentity(cmd.PupilLogin, cmd.PupilCode, middleware.GetClaims(r.Context()))

	live, err := h.lives.SubmitAnswer(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// decodeOptional decodes a JSON body when there is one.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func defaultIdentity(login, code string, claims *model.Claims) (string, string) {
	if login == "" && code == "" && claims != nil {
		return claims.Login, claims.Code
	}
	return login, code
}
