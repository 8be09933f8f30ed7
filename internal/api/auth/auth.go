package auth

import (
	"net/http"
	dto "run_the_numbers/internal/api/dto/auth"
	"run_the_numbers/internal/api/httperr"
	"run_the_numbers/internal/converter"
	"run_the_numbers/internal/middleware"
	"run_the_numbers/internal/service"
	"run_the_numbers/pkg/req"
	"run_the_numbers/pkg/resp"

	"go.uber.org/zap"
)

const (
	sessionCookie = "session_id"
	refreshCookie = "refresh_token"
	cookiePath    = "/auth"
	cookieMaxAge  = 30 * 24 * 60 * 60 // 30 дней
)

type HandlerDeps struct {
	Serv   service.AuthService
	Table  service.TableService
	Log    *zap.Logger
	Secure bool
}

type Handler struct {
	serv   service.AuthService
	table  service.TableService
	log    *zap.Logger
	secure bool
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, table: deps.Table, log: deps.Log, secure: deps.Secure}
}

// Register создаёт пользователя, открывает сессию
// и возвращает access_token; session_id и refresh_token уходят в cookies
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.RegisterRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	data, err := h.serv.Register(r.Context(), converter.RegisterRequestToUserModel(&requestBody))
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}

	h.setSessionCookies(w, data.SessionID, data.RefreshToken)
	resp.WriteJSONResponse(w, http.StatusCreated, dto.TokenResponse{AccessToken: data.AccessToken})
}

// Login открывает новую сессию
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.LoginRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	data, err := h.serv.Login(r.Context(), requestBody.Email, requestBody.Password)
	if err != nil {
		httperr.Write(w, h.log, err)
		return
	}

	h.setSessionCookies(w, data.SessionID, data.RefreshToken)
	resp.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{AccessToken: data.AccessToken})
}

// Refresh выдаёт новый access_token по session_id и refresh_token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sid, err := r.Cookie(sessionCookie)
	if err != nil {
		resp.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}
	rt, err := r.Cookie(refreshCookie)
	if err != nil {
		resp.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}

	accessToken, err := h.serv.Refresh(r.Context(), sid.Value, rt.Value)
	if err != nil {
		h.deleteSessionCookies(w)
		httperr.Write(w, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{AccessToken: accessToken})
}

// Logout закрывает сессию и стол игрока; повторный вызов не ошибка
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.serv.Logout(r.Context(), c.Value); err != nil {
			httperr.Write(w, h.log, err)
			return
		}
	}
	if id, ok := middleware.IdentityFromContext(r.Context()); ok && !id.Guest {
		h.table.SignOut(r.Context(), id)
	}

	h.deleteSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, sessionID, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     cookiePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   cookieMaxAge,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refreshToken,
		Path:     cookiePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   cookieMaxAge,
	})
}

func (h *Handler) deleteSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     cookiePath,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
