package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

const (
	// HeaderUserID идентификатор пользователя, проставляется API gateway
	HeaderUserID = "X-User-ID"

	// HeaderUserRole роль пользователя: client, provider, admin
	HeaderUserRole = "X-User-Role"
)

// Auth проверяет наличие X-User-ID и кладет идентификатор и роль в контекст.
// Роль без заголовка считается client.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get(HeaderUserID)
		if rawID == "" {
			handlers.RespondError(w, http.StatusUnauthorized, "заголовок X-User-ID обязателен")
			return
		}

		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, "некорректный заголовок X-User-ID")
			return
		}

		role := domain.ActorRole(r.Header.Get(HeaderUserRole))
		switch role {
		case domain.RoleClient, domain.RoleProvider, domain.RoleAdmin:
		case "":
			role = domain.RoleClient
		default:
			handlers.RespondError(w, http.StatusUnauthorized, "некорректный заголовок X-User-Role")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID возвращает идентификатор пользователя из контекста
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// UserRole возвращает роль пользователя из контекста
func UserRole(ctx context.Context) domain.ActorRole {
	if role, ok := ctx.Value(userRoleKey).(domain.ActorRole); ok {
		return role
	}
	return domain.RoleClient
}
