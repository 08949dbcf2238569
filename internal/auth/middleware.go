package auth

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	UsuarioIDKey ctxKey = "usuarioID"
	EmailKey     ctxKey = "email"
	RoleKey      ctxKey = "role"
	ClinicaIDKey ctxKey = "clinicaID"
)

// MiddlewareAutenticacao valida o access token (header Bearer ou cookie)
// e confirma na store que a conta continua ativa antes de liberar a rota.
func MiddlewareAutenticacao(jwtManager *JWTManager, contas ContaStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw := accessTokenDaRequisicao(r)
			if raw == "" {
				http.Error(w, "token ausente", http.StatusUnauthorized)
				return
			}
			claims, err := jwtManager.ValidarToken(raw)
			if err != nil {
				http.Error(w, "token inválido", http.StatusUnauthorized)
				return
			}

			// token válido não basta: a conta precisa seguir ativa
			conta, err := contas.BuscarPorID(claims.UserID)
			if err != nil || !conta.Ativo {
				http.Error(w, "token inválido", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UsuarioIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			ctx = context.WithValue(ctx, ClinicaIDKey, claims.ClinicaID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restringe a rota aos papéis informados.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	permitidos := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		permitidos[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(RoleKey).(string)
			if _, ok := permitidos[role]; !ok {
				http.Error(w, "acesso negado", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helpers para os handlers lerem a identidade autenticada do contexto.

func UsuarioDoContexto(ctx context.Context) uint {
	id, _ := ctx.Value(UsuarioIDKey).(uint)
	return id
}

func RoleDoContexto(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

func ClinicaDoContexto(ctx context.Context) uint {
	id, _ := ctx.Value(ClinicaIDKey).(uint)
	return id
}
