package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limitador aplica janela fixa por IP via Redis (INCR + EXPIRE).
// Com cliente nulo (Redis desabilitado/indisponível) vira pass-through,
// o login não pode parar porque o Redis caiu.
type Limitador struct {
	rdb     *redis.Client
	limite  int
	janela  time.Duration
	prefixo string
	logger  *zap.Logger
}

func NewLimitador(rdb *redis.Client, limite int, janela time.Duration, prefixo string, logger *zap.Logger) *Limitador {
	if limite <= 0 {
		limite = 10
	}
	if janela <= 0 {
		janela = time.Minute
	}
	return &Limitador{rdb: rdb, limite: limite, janela: janela, prefixo: prefixo, logger: logger}
}

// Middleware limita a rota por IP de origem.
func (l *Limitador) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.rdb == nil {
			next.ServeHTTP(w, r)
			return
		}

		chave := fmt.Sprintf("%s:%s", l.prefixo, ipDe(r))
		ctx := r.Context()

		contagem, err := l.rdb.Incr(ctx, chave).Result()
		if err != nil {
			// indisponibilidade do Redis não bloqueia o fluxo
			l.logger.Warn("rate limit indisponível", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if contagem == 1 {
			l.rdb.Expire(ctx, chave, l.janela)
		}

		if contagem > int64(l.limite) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.janela.Seconds())))
			http.Error(w, "muitas tentativas, aguarde", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ipDe(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewRedisClient abre o cliente a partir da configuração; devolve nil
// (limitador desligado) quando não houver endereço configurado.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}
