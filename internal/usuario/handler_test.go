package usuario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
)

type repoFake struct {
	porID map[uint]*Usuario
}

func newRepoFake(usuarios ...*Usuario) *repoFake {
	f := &repoFake{porID: map[uint]*Usuario{}}
	for _, u := range usuarios {
		f.porID[u.ID] = u
	}
	return f
}

func (f *repoFake) Salvar(u *Usuario) error {
	if u.ID == 0 {
		u.ID = uint(len(f.porID) + 1)
	}
	f.porID[u.ID] = u
	return nil
}

func (f *repoFake) BuscarPorID(id uint) (*Usuario, error) {
	u, ok := f.porID[id]
	if !ok {
		return nil, errors.New("registro não encontrado")
	}
	return u, nil
}

func (f *repoFake) BuscarPorEmail(email string) (*Usuario, error) {
	for _, u := range f.porID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("registro não encontrado")
}

func (f *repoFake) ListarPorClinica(clinicaID uint) ([]Usuario, error) {
	var lista []Usuario
	for _, u := range f.porID {
		if u.ClinicaID == clinicaID {
			lista = append(lista, *u)
		}
	}
	return lista, nil
}

func (f *repoFake) Desativar(id uint) error {
	u, ok := f.porID[id]
	if !ok {
		return errors.New("registro não encontrado")
	}
	u.Ativo = false
	return nil
}

type tokensFake struct {
	revogadosDe []uint
}

func (f *tokensFake) Criar(rt *auth.RefreshToken) error { return nil }

func (f *tokensFake) BuscarPorHash(h string) (*auth.RefreshToken, error) {
	return nil, errors.New("registro não encontrado")
}

func (f *tokensFake) RevogarSeAtivo(h string) (bool, error) { return false, nil }

func (f *tokensFake) RevogarTodosDoUsuario(usuarioID uint) error {
	f.revogadosDe = append(f.revogadosDe, usuarioID)
	return nil
}

type codigosFake struct {
	substituidos map[uint][]string
}

func (f *codigosFake) Substituir(usuarioID uint, hashes []string) error {
	if f.substituidos == nil {
		f.substituidos = map[uint][]string{}
	}
	f.substituidos[usuarioID] = hashes
	return nil
}

func (f *codigosFake) ConsumirSeDisponivel(usuarioID uint, hash string) (bool, error) {
	return false, nil
}

type ambiente struct {
	handler *Handler
	repo    *repoFake
	tokens  *tokensFake
	codigos *codigosFake
}

func novoAmbiente(usuarios ...*Usuario) *ambiente {
	a := &ambiente{
		repo:    newRepoFake(usuarios...),
		tokens:  &tokensFake{},
		codigos: &codigosFake{},
	}
	a.handler = NewHandler(a.repo, a.tokens, a.codigos, auth.NewServico2FA("Petinova"), auditoria.NewRegistradorNulo(), zap.NewNop())
	return a
}

func usuarioDeTeste() *Usuario {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Segredo1!"), bcrypt.MinCost)
	u := &Usuario{
		Nome:      "Dra. Marina",
		Email:     "marina@clinica.com",
		Role:      RoleVeterinario,
		ClinicaID: 3,
		Ativo:     true,
		SenhaHash: string(hash),
	}
	u.ID = 7
	return u
}

func requisicaoComIdentidade(metodo string, corpo any, u *Usuario) *http.Request {
	var buf bytes.Buffer
	if corpo != nil {
		_ = json.NewEncoder(&buf).Encode(corpo)
	}
	req := httptest.NewRequest(metodo, "/api/usuarios/x", &buf)

	ctx := context.WithValue(req.Context(), auth.UsuarioIDKey, u.ID)
	ctx = context.WithValue(ctx, auth.EmailKey, u.Email)
	ctx = context.WithValue(ctx, auth.RoleKey, u.Role)
	ctx = context.WithValue(ctx, auth.ClinicaIDKey, u.ClinicaID)
	return req.WithContext(ctx)
}

func TestAlterarSenha_FluxoCompleto(t *testing.T) {
	u := usuarioDeTeste()
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.AlterarSenha(rec, requisicaoComIdentidade(http.MethodPut, map[string]string{
		"senhaAtual": "Segredo1!",
		"novaSenha":  "NovoSegredo2!",
	}, u))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte("NovoSegredo2!")))
	assert.Contains(t, a.tokens.revogadosDe, u.ID, "troca de senha derruba as sessões")
}

func TestAlterarSenha_SenhaAtualErrada(t *testing.T) {
	u := usuarioDeTeste()
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.AlterarSenha(rec, requisicaoComIdentidade(http.MethodPut, map[string]string{
		"senhaAtual": "Errada1!",
		"novaSenha":  "NovoSegredo2!",
	}, u))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, a.tokens.revogadosDe)
}

func TestAlterarSenha_NovaSenhaFraca(t *testing.T) {
	u := usuarioDeTeste()
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.AlterarSenha(rec, requisicaoComIdentidade(http.MethodPut, map[string]string{
		"senhaAtual": "Segredo1!",
		"novaSenha":  "fraca",
	}, u))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Erros []string `json:"erros"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Erros, "todas as regras violadas devem ser listadas")
}

func TestCriarUsuario_SenhaFracaListaTodasAsViolacoes(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	a := novoAmbiente(admin)

	rec := httptest.NewRecorder()
	a.handler.CriarUsuario(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{
		"nome":  "João",
		"email": "joao@clinica.com",
		"role":  RoleRecepcionista,
		"senha": "",
	}, admin))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Erros []string `json:"erros"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Erros, 5)
}

func TestCriarUsuario_HerdaClinicaDoAdmin(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	a := novoAmbiente(admin)

	rec := httptest.NewRecorder()
	a.handler.CriarUsuario(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{
		"nome":  "João",
		"email": "Joao@Clinica.com",
		"role":  RoleRecepcionista,
		"senha": "SenhaBoa1!",
	}, admin))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	criado, err := a.repo.BuscarPorEmail("joao@clinica.com")
	require.NoError(t, err, "email deve ser normalizado para minúsculas")
	assert.Equal(t, admin.ClinicaID, criado.ClinicaID)
	assert.True(t, criado.Ativo)
}

func TestCriarUsuario_RoleInvalido(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	a := novoAmbiente(admin)

	rec := httptest.NewRecorder()
	a.handler.CriarUsuario(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{
		"nome":  "João",
		"email": "joao@clinica.com",
		"role":  "SUPERUSUARIO",
		"senha": "SenhaBoa1!",
	}, admin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetarSenha_GeraTemporariaEDerrubaSessoes(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	alvo := usuarioDeTeste()
	alvo.ID = 8
	alvo.Email = "joao@clinica.com"
	a := novoAmbiente(admin, alvo)

	req := requisicaoComIdentidade(http.MethodPost, nil, admin)
	req = mux.SetURLVars(req, map[string]string{"id": "8"})
	rec := httptest.NewRecorder()
	a.handler.ResetarSenha(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SenhaTemporaria string `json:"senhaTemporaria"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.SenhaTemporaria, 12)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alvo.SenhaHash), []byte(resp.SenhaTemporaria)))
	assert.True(t, alvo.PrecisaRedefinirSenha)
	assert.Contains(t, a.tokens.revogadosDe, alvo.ID)
}

func TestIniciarEAtivar2FA(t *testing.T) {
	u := usuarioDeTeste()
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.Iniciar2FA(rec, requisicaoComIdentidade(http.MethodPost, nil, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Segredo       string   `json:"segredo"`
		OtpauthURL    string   `json:"otpauthUrl"`
		CodigosBackup []string `json:"codigosBackup"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Segredo)
	assert.Contains(t, resp.OtpauthURL, "otpauth://totp/")
	assert.Len(t, resp.CodigosBackup, auth.QtdCodigosBackup)
	assert.Len(t, a.codigos.substituidos[u.ID], auth.QtdCodigosBackup)
	assert.False(t, u.TwoFAAtivo, "2FA só vale após a confirmação")

	// confirmação com o primeiro código do aplicativo
	codigo, err := totp.GenerateCode(resp.Segredo, time.Now().UTC())
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	a.handler.Ativar2FA(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{"codigo": codigo}, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, u.TwoFAAtivo)
}

func TestAtivar2FA_SemIniciar(t *testing.T) {
	u := usuarioDeTeste()
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.Ativar2FA(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{"codigo": "123456"}, u))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAtivar2FA_CodigoErrado(t *testing.T) {
	u := usuarioDeTeste()
	u.Segredo2FA = "JBSWY3DPEHPK3PXP"
	a := novoAmbiente(u)

	rec := httptest.NewRecorder()
	a.handler.Ativar2FA(rec, requisicaoComIdentidade(http.MethodPost, map[string]string{"codigo": "000000"}, u))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, u.TwoFAAtivo)
}

func TestDesativarUsuario_DerrubaSessoes(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	alvo := usuarioDeTeste()
	alvo.ID = 8
	alvo.Email = "joao@clinica.com"
	a := novoAmbiente(admin, alvo)

	req := requisicaoComIdentidade(http.MethodDelete, nil, admin)
	req = mux.SetURLVars(req, map[string]string{"id": "8"})
	rec := httptest.NewRecorder()
	a.handler.DesativarUsuario(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, alvo.Ativo)
	assert.Contains(t, a.tokens.revogadosDe, alvo.ID)
}

func TestDesativarUsuario_OutraClinica(t *testing.T) {
	admin := usuarioDeTeste()
	admin.Role = RoleAdmin
	alvo := usuarioDeTeste()
	alvo.ID = 8
	alvo.Email = "joao@outra.com"
	alvo.ClinicaID = 99
	a := novoAmbiente(admin, alvo)

	req := requisicaoComIdentidade(http.MethodDelete, nil, admin)
	req = mux.SetURLVars(req, map[string]string{"id": "8"})
	rec := httptest.NewRecorder()
	a.handler.DesativarUsuario(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "clínica não pode enxergar usuários de outra")
	assert.True(t, alvo.Ativo)
}
