package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
	"github.com/gabrielnatan/petinova-2-sub003/internal/utils"
)

// Handler concentra o fluxo de sessão: login, 2FA, refresh e logout.
type Handler struct {
	Contas    ContaStore
	Tokens    RefreshTokens
	Codigos   CodigosBackup
	JWT       *JWTManager
	TwoFA     *Servico2FA
	Auditoria *auditoria.Registrador
	Logger    *zap.Logger

	RefreshTTL   time.Duration
	CookieSecure bool
}

func NewHandler(
	contas ContaStore,
	tokens RefreshTokens,
	codigos CodigosBackup,
	jwtManager *JWTManager,
	twoFA *Servico2FA,
	reg *auditoria.Registrador,
	logger *zap.Logger,
	refreshTTL time.Duration,
	cookieSecure bool,
) *Handler {
	return &Handler{
		Contas:       contas,
		Tokens:       tokens,
		Codigos:      codigos,
		JWT:          jwtManager,
		TwoFA:        twoFA,
		Auditoria:    reg,
		Logger:       logger,
		RefreshTTL:   refreshTTL,
		CookieSecure: cookieSecure,
	}
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type verificar2FARequest struct {
	Email        string `json:"email"`
	Codigo       string `json:"codigo"`
	CodigoBackup string `json:"codigoBackup"`
}

// Login valida o fator primário. Conta com 2FA habilitado recebe apenas
// o desafio; sem 2FA, o par de tokens sai direto nos cookies.
//
// Qualquer falha do fator primário (email desconhecido, conta inativa,
// senha errada) devolve o mesmo 401 genérico para não permitir
// enumeração de contas.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Senha == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	conta, err := h.Contas.BuscarPorEmail(req.Email)
	if err != nil || !conta.Ativo {
		h.auditar(auditoria.EventoLoginFalha, 0, req.Email, 0, r, "conta desconhecida ou inativa")
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	if !utils.VerificarSenha(conta.SenhaHash, req.Senha) {
		h.auditar(auditoria.EventoLoginFalha, conta.ID, conta.Email, conta.ClinicaID, r, "senha incorreta")
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	if conta.TwoFAAtivo {
		h.auditar(auditoria.EventoLogin2FAPendente, conta.ID, conta.Email, conta.ClinicaID, r, "")
		responderJSON(w, http.StatusOK, map[string]any{"requer2FA": true})
		return
	}

	h.emitirSessao(w, r, conta, auditoria.EventoLoginOK)
}

// VerificarSegundoFator fecha o login de contas com 2FA. Aceita
// exatamente um entre código TOTP e código de backup; o código de
// backup é consumido atomicamente e nunca vale duas vezes.
func (h *Handler) VerificarSegundoFator(w http.ResponseWriter, r *http.Request) {
	var req verificar2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if (req.Codigo == "") == (req.CodigoBackup == "") {
		http.Error(w, "informe codigo ou codigoBackup", http.StatusBadRequest)
		return
	}

	conta, err := h.Contas.BuscarPorEmail(req.Email)
	if err != nil || !conta.Ativo || !conta.TwoFAAtivo || conta.Segredo2FA == "" {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	var ok bool
	if req.Codigo != "" {
		ok = h.TwoFA.ValidarTOTP(conta.Segredo2FA, req.Codigo)
	} else {
		ok, err = h.Codigos.ConsumirSeDisponivel(conta.ID, HashCodigoBackup(req.CodigoBackup))
		if err != nil {
			h.Logger.Error("falha ao consumir código de backup", zap.Error(err))
			http.Error(w, "erro interno", http.StatusInternalServerError)
			return
		}
	}
	if !ok {
		h.auditar(auditoria.Evento2FAFalha, conta.ID, conta.Email, conta.ClinicaID, r, "")
		http.Error(w, "código inválido", http.StatusUnauthorized)
		return
	}

	h.emitirSessao(w, r, conta, auditoria.Evento2FAOK)
}

// Refresh troca o refresh token por um novo par (rotação de uso único).
// A revogação do token corrente é um UPDATE condicional: de duas
// chamadas concorrentes com o mesmo cookie, só uma emite o novo par.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		http.Error(w, "sem refresh token", http.StatusUnauthorized)
		return
	}
	hash := HashRefreshRaw(c.Value)

	cur, err := h.Tokens.BuscarPorHash(hash)
	if err != nil {
		clearAuthCookies(w, h.CookieSecure)
		http.Error(w, "refresh inválido", http.StatusUnauthorized)
		return
	}
	if time.Now().After(cur.ExpiresAt) {
		clearAuthCookies(w, h.CookieSecure)
		http.Error(w, "refresh expirado", http.StatusUnauthorized)
		return
	}

	ok, err := h.Tokens.RevogarSeAtivo(hash)
	if err != nil {
		h.Logger.Error("falha ao revogar refresh token", zap.Error(err))
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	if !ok {
		// token já revogado: reuso (ou perdedor de uma corrida de rotação)
		h.auditar(auditoria.EventoRefreshInvalido, cur.UsuarioID, "", 0, r, "refresh token reutilizado")
		clearAuthCookies(w, h.CookieSecure)
		http.Error(w, "refresh inválido", http.StatusUnauthorized)
		return
	}

	conta, err := h.Contas.BuscarPorID(cur.UsuarioID)
	if err != nil || !conta.Ativo {
		clearAuthCookies(w, h.CookieSecure)
		http.Error(w, "refresh inválido", http.StatusUnauthorized)
		return
	}

	access, err := h.emitirTokens(w, conta)
	if err != nil {
		h.Logger.Error("falha ao emitir tokens no refresh", zap.Error(err))
		clearAuthCookies(w, h.CookieSecure)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}

	h.auditar(auditoria.EventoRefreshOK, conta.ID, conta.Email, conta.ClinicaID, r, "")
	responderJSON(w, http.StatusOK, map[string]any{
		"accessToken": access,
		"usuario":     montarContaDTO(conta),
	})
}

// Logout revoga o refresh token apresentado e, se o access token ainda
// for verificável, todas as sessões do usuário. Sempre responde sucesso:
// falha interna aqui não pode virar sonda de estado de sessão.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		if _, err := h.Tokens.RevogarSeAtivo(HashRefreshRaw(c.Value)); err != nil {
			h.Logger.Warn("logout: falha ao revogar refresh token", zap.Error(err))
		}
	}

	if raw := accessTokenDaRequisicao(r); raw != "" {
		if claims, err := h.JWT.ValidarToken(raw); err == nil {
			if err := h.Tokens.RevogarTodosDoUsuario(claims.UserID); err != nil {
				h.Logger.Warn("logout: falha ao revogar sessões do usuário", zap.Error(err))
			}
			h.auditar(auditoria.EventoLogout, claims.UserID, claims.Email, claims.ClinicaID, r, "")
		}
	}

	clearAuthCookies(w, h.CookieSecure)
	responderJSON(w, http.StatusOK, map[string]string{"message": "logout efetuado"})
}

// emitirSessao emite o par de tokens, audita e responde com o usuário.
func (h *Handler) emitirSessao(w http.ResponseWriter, r *http.Request, conta *Conta, evento string) {
	if _, err := h.emitirTokens(w, conta); err != nil {
		h.Logger.Error("falha ao emitir tokens", zap.Error(err))
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	h.auditar(evento, conta.ID, conta.Email, conta.ClinicaID, r, "")
	responderJSON(w, http.StatusOK, map[string]any{"usuario": montarContaDTO(conta)})
}

// emitirTokens gera access + refresh, persiste o refresh e grava os cookies.
func (h *Handler) emitirTokens(w http.ResponseWriter, conta *Conta) (string, error) {
	access, err := h.JWT.GerarToken(conta)
	if err != nil {
		return "", err
	}

	raw, err := GerarRefreshRaw()
	if err != nil {
		return "", err
	}
	rt := RefreshToken{
		UsuarioID: conta.ID,
		Hash:      HashRefreshRaw(raw),
		ExpiresAt: time.Now().Add(h.RefreshTTL),
	}
	if err := h.Tokens.Criar(&rt); err != nil {
		return "", err
	}

	setAccessCookie(w, access, h.JWT.TTL(), h.CookieSecure)
	setRefreshCookie(w, raw, h.RefreshTTL, h.CookieSecure)
	return access, nil
}

func (h *Handler) auditar(tipo string, usuarioID uint, email string, clinicaID uint, r *http.Request, detalhe string) {
	h.Auditoria.Registrar(auditoria.Evento{
		Tipo:      tipo,
		UsuarioID: usuarioID,
		Email:     email,
		ClinicaID: clinicaID,
		IP:        ipDaRequisicao(r),
		Detalhe:   detalhe,
	})
}

// accessTokenDaRequisicao extrai o access token do header Bearer ou do cookie.
func accessTokenDaRequisicao(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

func ipDaRequisicao(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func responderJSON(w http.ResponseWriter, status int, corpo any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(corpo)
}
