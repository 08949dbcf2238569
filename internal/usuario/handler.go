package usuario

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
	"github.com/gabrielnatan/petinova-2-sub003/internal/utils"
)

type createUsuarioRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Role     string `json:"role"`
	Senha    string `json:"senha"`
}

type alterarSenhaRequest struct {
	SenhaAtual string `json:"senhaAtual"`
	NovaSenha  string `json:"novaSenha"`
}

type ativar2FARequest struct {
	Codigo string `json:"codigo"`
}

type Handler struct {
	Repository Repository
	Tokens     auth.RefreshTokens
	Codigos    auth.CodigosBackup
	TwoFA      *auth.Servico2FA
	Auditoria  *auditoria.Registrador
	Logger     *zap.Logger
}

func NewHandler(repo Repository, tokens auth.RefreshTokens, codigos auth.CodigosBackup, twoFA *auth.Servico2FA, reg *auditoria.Registrador, logger *zap.Logger) *Handler {
	return &Handler{
		Repository: repo,
		Tokens:     tokens,
		Codigos:    codigos,
		TwoFA:      twoFA,
		Auditoria:  reg,
		Logger:     logger,
	}
}

// CriarUsuario cadastra um novo membro da equipe (somente ADMIN).
func (h *Handler) CriarUsuario(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var req createUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Nome == "" || req.Email == "" || !RoleValido(req.Role) {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	if ok, erros := utils.ValidarForcaSenha(req.Senha); !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"erros": erros})
		return
	}

	hash, err := utils.HashSenha(req.Senha)
	if err != nil {
		http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
		return
	}

	u := Usuario{
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		Role:      req.Role,
		ClinicaID: clinicaID,
		Ativo:     true,
		SenhaHash: hash,
	}
	if err := h.Repository.Salvar(&u); err != nil {
		http.Error(w, "erro ao salvar usuário", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(u)
}

// ListarUsuarios devolve a equipe da clínica do usuário autenticado.
func (h *Handler) ListarUsuarios(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	usuarios, err := h.Repository.ListarPorClinica(clinicaID)
	if err != nil {
		http.Error(w, "erro ao listar usuários", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(usuarios)
}

// BuscarPorID devolve um usuário da mesma clínica (ADMIN, ou o próprio).
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	usuarioID := auth.UsuarioDoContexto(r.Context())
	role := auth.RoleDoContexto(r.Context())
	clinicaID := auth.ClinicaDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if role != RoleAdmin && uint(id) != usuarioID {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}

	u, err := h.Repository.BuscarPorID(uint(id))
	if err != nil || u.ClinicaID != clinicaID {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// Me devolve o usuário logado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.BuscarPorID(auth.UsuarioDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// AtualizarUsuario altera nome/telefone (ADMIN, ou o próprio).
func (h *Handler) AtualizarUsuario(w http.ResponseWriter, r *http.Request) {
	usuarioID := auth.UsuarioDoContexto(r.Context())
	role := auth.RoleDoContexto(r.Context())
	clinicaID := auth.ClinicaDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if role != RoleAdmin && uint(id) != usuarioID {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}

	u, err := h.Repository.BuscarPorID(uint(id))
	if err != nil || u.ClinicaID != clinicaID {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}

	var dados struct {
		Nome     string `json:"nome"`
		Telefone string `json:"telefone"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		u.Nome = dados.Nome
	}
	if dados.Telefone != "" {
		u.Telefone = dados.Telefone
	}
	// troca de papel é prerrogativa do ADMIN
	if dados.Role != "" && role == RoleAdmin && RoleValido(dados.Role) {
		u.Role = dados.Role
	}

	if err := h.Repository.Salvar(u); err != nil {
		http.Error(w, "erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// DesativarUsuario desliga a conta e derruba todas as sessões (ADMIN).
// Contas não são excluídas do banco.
func (h *Handler) DesativarUsuario(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorID(uint(id))
	if err != nil || u.ClinicaID != clinicaID {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}

	if err := h.Repository.Desativar(u.ID); err != nil {
		http.Error(w, "erro ao desativar usuário", http.StatusInternalServerError)
		return
	}
	if err := h.Tokens.RevogarTodosDoUsuario(u.ID); err != nil {
		h.Logger.Warn("falha ao revogar sessões do usuário desativado", zap.Error(err))
	}
	h.Auditoria.Registrar(auditoria.Evento{
		Tipo:      auditoria.EventoContaDesativada,
		UsuarioID: u.ID,
		Email:     u.Email,
		ClinicaID: u.ClinicaID,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("usuário desativado"))
}

// AlterarSenha troca a senha do próprio usuário. Exige a senha atual,
// valida a força da nova e revoga todas as sessões existentes.
func (h *Handler) AlterarSenha(w http.ResponseWriter, r *http.Request) {
	usuarioID := auth.UsuarioDoContexto(r.Context())

	var req alterarSenhaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorID(usuarioID)
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	if !utils.VerificarSenha(u.SenhaHash, req.SenhaAtual) {
		http.Error(w, "senha atual incorreta", http.StatusUnauthorized)
		return
	}
	if ok, erros := utils.ValidarForcaSenha(req.NovaSenha); !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"erros": erros})
		return
	}

	hash, err := utils.HashSenha(req.NovaSenha)
	if err != nil {
		http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
		return
	}
	u.SenhaHash = hash
	u.PrecisaRedefinirSenha = false
	if err := h.Repository.Salvar(u); err != nil {
		http.Error(w, "erro ao salvar senha", http.StatusInternalServerError)
		return
	}

	if err := h.Tokens.RevogarTodosDoUsuario(u.ID); err != nil {
		h.Logger.Warn("falha ao revogar sessões após troca de senha", zap.Error(err))
	}
	h.Auditoria.Registrar(auditoria.Evento{
		Tipo:      auditoria.EventoSenhaAlterada,
		UsuarioID: u.ID,
		Email:     u.Email,
		ClinicaID: u.ClinicaID,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("senha alterada"))
}

// ResetarSenha gera uma senha temporária para outro usuário (ADMIN).
// A conta fica marcada para redefinir a senha no próximo acesso e todas
// as sessões caem; a senha temporária aparece uma única vez na resposta.
func (h *Handler) ResetarSenha(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorID(uint(id))
	if err != nil || u.ClinicaID != clinicaID {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}

	temporaria, err := utils.GerarSenhaTemporaria()
	if err != nil {
		http.Error(w, "erro ao gerar senha temporária", http.StatusInternalServerError)
		return
	}
	hash, err := utils.HashSenha(temporaria)
	if err != nil {
		http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
		return
	}

	u.SenhaHash = hash
	u.PrecisaRedefinirSenha = true
	if err := h.Repository.Salvar(u); err != nil {
		http.Error(w, "erro ao salvar senha", http.StatusInternalServerError)
		return
	}

	if err := h.Tokens.RevogarTodosDoUsuario(u.ID); err != nil {
		h.Logger.Warn("falha ao revogar sessões após reset de senha", zap.Error(err))
	}
	h.Auditoria.Registrar(auditoria.Evento{
		Tipo:      auditoria.EventoSenhaAlterada,
		UsuarioID: u.ID,
		Email:     u.Email,
		ClinicaID: u.ClinicaID,
		Detalhe:   "senha redefinida pelo administrador",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"senhaTemporaria": temporaria})
}

// Iniciar2FA gera segredo TOTP e códigos de backup para o usuário logado.
// O 2FA só passa a valer depois da confirmação em Ativar2FA.
func (h *Handler) Iniciar2FA(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.BuscarPorID(auth.UsuarioDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}

	segredo, url, err := h.TwoFA.GerarSegredo(u.Email)
	if err != nil {
		http.Error(w, "erro ao gerar segredo", http.StatusInternalServerError)
		return
	}
	codigos, hashes, err := auth.GerarCodigosBackup()
	if err != nil {
		http.Error(w, "erro ao gerar códigos de backup", http.StatusInternalServerError)
		return
	}

	u.Segredo2FA = segredo
	u.TwoFAAtivo = false
	if err := h.Repository.Salvar(u); err != nil {
		http.Error(w, "erro ao salvar segredo", http.StatusInternalServerError)
		return
	}
	if err := h.Codigos.Substituir(u.ID, hashes); err != nil {
		http.Error(w, "erro ao salvar códigos de backup", http.StatusInternalServerError)
		return
	}

	// única vez em que segredo e códigos aparecem em claro
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"segredo":       segredo,
		"otpauthUrl":    url,
		"codigosBackup": codigos,
	})
}

// Ativar2FA confirma o enroll validando o primeiro código do aplicativo.
func (h *Handler) Ativar2FA(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.BuscarPorID(auth.UsuarioDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	if u.Segredo2FA == "" {
		http.Error(w, "2FA não iniciado", http.StatusBadRequest)
		return
	}

	var req ativar2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Codigo == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if !h.TwoFA.ValidarTOTP(u.Segredo2FA, req.Codigo) {
		http.Error(w, "código inválido", http.StatusUnauthorized)
		return
	}

	u.TwoFAAtivo = true
	if err := h.Repository.Salvar(u); err != nil {
		http.Error(w, "erro ao ativar 2FA", http.StatusInternalServerError)
		return
	}
	h.Auditoria.Registrar(auditoria.Evento{
		Tipo:      auditoria.Evento2FAHabilitado,
		UsuarioID: u.ID,
		Email:     u.Email,
		ClinicaID: u.ClinicaID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"twoFAAtivo": true})
}
