package middleware

import (
	"context"
	"net/http"
	"run_the_numbers/internal/model"
	"run_the_numbers/pkg/resp"
	"run_the_numbers/pkg/token"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	GuestCookie    = "guest_id"
	guestCookieAge = 365 * 24 * 60 * 60
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext ok=false, если Identity не был подключён
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(model.Identity)
	return id, ok
}

// Identity определяет игрока по bearer токену. Без валидного токена
// запрос идёт от гостя, id гостя хранится в cookie guest_id.
func Identity(secret []byte, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearer(r); raw != "" {
				claims, err := token.VerifyToken(raw, secret)
				if err == nil {
					id := model.Identity{UserID: claims.Subject, Admin: claims.Admin}
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
					return
				}
				log.Debug("bearer token rejected", zap.Error(err))
			}

			id := model.Identity{UserID: guestID(w, r), Guest: true}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// bearer браузер не передаёт заголовки при открытии websocket, поэтому
// токен принимается и в параметре access_token
func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, raw, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(raw)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func guestID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(GuestCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   guestCookieAge,
	})
	return id
}

// RequireUser пропускает только авторизованных пользователей
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || id.Guest {
			resp.WriteError(w, http.StatusUnauthorized, "Sign in to continue.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		if !id.Admin {
			resp.WriteError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
