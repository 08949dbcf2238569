package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
)

// --- fakes em memória (mesmo papel dos repositórios gorm) ---

type contasFake struct {
	porEmail map[string]*Conta
	porID    map[uint]*Conta
}

func newContasFake(contas ...*Conta) *contasFake {
	f := &contasFake{porEmail: map[string]*Conta{}, porID: map[uint]*Conta{}}
	for _, c := range contas {
		f.porEmail[c.Email] = c
		f.porID[c.ID] = c
	}
	return f
}

func (f *contasFake) BuscarPorEmail(email string) (*Conta, error) {
	c, ok := f.porEmail[email]
	if !ok {
		return nil, errors.New("registro não encontrado")
	}
	return c, nil
}

func (f *contasFake) BuscarPorID(id uint) (*Conta, error) {
	c, ok := f.porID[id]
	if !ok {
		return nil, errors.New("registro não encontrado")
	}
	return c, nil
}

type tokensFake struct {
	mu      sync.Mutex
	seq     uint
	porHash map[string]*RefreshToken
}

func newTokensFake() *tokensFake {
	return &tokensFake{porHash: map[string]*RefreshToken{}}
}

func (f *tokensFake) Criar(rt *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	rt.ID = f.seq
	rt.CreatedAt = time.Now()
	copia := *rt
	f.porHash[rt.Hash] = &copia
	return nil
}

func (f *tokensFake) BuscarPorHash(hash string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.porHash[hash]
	if !ok {
		return nil, errors.New("registro não encontrado")
	}
	copia := *rt
	return &copia, nil
}

func (f *tokensFake) RevogarSeAtivo(hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.porHash[hash]
	if !ok || rt.RevokedAt != nil {
		return false, nil
	}
	agora := time.Now()
	rt.RevokedAt = &agora
	return true, nil
}

func (f *tokensFake) RevogarTodosDoUsuario(usuarioID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	agora := time.Now()
	for _, rt := range f.porHash {
		if rt.UsuarioID == usuarioID && rt.RevokedAt == nil {
			rt.RevokedAt = &agora
		}
	}
	return nil
}

func (f *tokensFake) ativos(usuarioID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rt := range f.porHash {
		if rt.UsuarioID == usuarioID && rt.RevokedAt == nil {
			n++
		}
	}
	return n
}

type codigosFake struct {
	mu     sync.Mutex
	hashes map[uint]map[string]bool // usuarioID -> hash -> usado
}

func newCodigosFake() *codigosFake {
	return &codigosFake{hashes: map[uint]map[string]bool{}}
}

func (f *codigosFake) Substituir(usuarioID uint, hashes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]bool{}
	for _, h := range hashes {
		m[h] = false
	}
	f.hashes[usuarioID] = m
	return nil
}

func (f *codigosFake) ConsumirSeDisponivel(usuarioID uint, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	usado, ok := f.hashes[usuarioID][hash]
	if !ok || usado {
		return false, nil
	}
	f.hashes[usuarioID][hash] = true
	return true, nil
}

// --- ambiente de teste ---

type ambiente struct {
	handler *Handler
	contas  *contasFake
	tokens  *tokensFake
	codigos *codigosFake
}

func hashDeTeste(t *testing.T, senha string) string {
	t.Helper()
	// MinCost: o custo real é coberto pelos testes do pacote utils
	h, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func novoAmbiente(t *testing.T, contas ...*Conta) *ambiente {
	t.Helper()
	jwtManager, err := NewJWTManager("segredo-de-teste", AccessTTL)
	require.NoError(t, err)

	a := &ambiente{
		contas:  newContasFake(contas...),
		tokens:  newTokensFake(),
		codigos: newCodigosFake(),
	}
	a.handler = NewHandler(
		a.contas,
		a.tokens,
		a.codigos,
		jwtManager,
		NewServico2FA("Petinova"),
		auditoria.NewRegistradorNulo(),
		zap.NewNop(),
		7*24*time.Hour,
		false,
	)
	return a
}

func postJSON(handler http.HandlerFunc, corpo any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if corpo != nil {
		_ = json.NewEncoder(&buf).Encode(corpo)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/x", &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func cookiePorNome(t *testing.T, rec *httptest.ResponseRecorder, nome string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == nome {
			return c
		}
	}
	t.Fatalf("cookie %s não encontrado", nome)
	return nil
}

// --- login ---

func TestLogin_Sem2FA_EmiteCookiesEUsuario(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	rec := postJSON(a.handler.Login, map[string]string{"email": conta.Email, "senha": "Segredo1!"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Usuario struct {
			Role string `json:"role"`
		} `json:"usuario"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "VETERINARIO", resp.Usuario.Role)

	access := cookiePorNome(t, rec, AccessCookie)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)

	refresh := cookiePorNome(t, rec, RefreshCookie)
	assert.Equal(t, 604800, refresh.MaxAge)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.True(t, refresh.HttpOnly)
}

func TestLogin_FalhasSaoIndistinguiveis(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	inativa := contaDeTeste()
	inativa.ID = 8
	inativa.Email = "inativa@clinica.com"
	inativa.Ativo = false
	inativa.SenhaHash = conta.SenhaHash
	a := novoAmbiente(t, conta, inativa)

	casos := map[string]map[string]string{
		"email desconhecido": {"email": "ninguem@clinica.com", "senha": "Segredo1!"},
		"senha errada":       {"email": conta.Email, "senha": "Errada1!"},
		"conta inativa":      {"email": inativa.Email, "senha": "Segredo1!"},
	}
	var corpos []string
	for nome, corpo := range casos {
		t.Run(nome, func(t *testing.T) {
			rec := postJSON(a.handler.Login, corpo)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
			corpos = append(corpos, rec.Body.String())
		})
	}
	for _, c := range corpos {
		assert.Equal(t, corpos[0], c, "respostas de falha devem ser idênticas")
	}
}

func TestLogin_PayloadInvalido(t *testing.T) {
	a := novoAmbiente(t)
	rec := postJSON(a.handler.Login, map[string]string{"email": "x@y.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Com2FA_DevolveDesafioSemTokens(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	conta.TwoFAAtivo = true
	conta.Segredo2FA = "JBSWY3DPEHPK3PXP"
	a := novoAmbiente(t, conta)

	rec := postJSON(a.handler.Login, map[string]string{"email": conta.Email, "senha": "Segredo1!"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["requer2FA"])
	assert.Empty(t, rec.Result().Cookies(), "desafio não pode emitir tokens")
	assert.Equal(t, 0, a.tokens.ativos(conta.ID))
}

// --- segundo fator ---

func conta2FA(t *testing.T) *Conta {
	t.Helper()
	s := NewServico2FA("Petinova")
	segredo, _, err := s.GerarSegredo("marina@clinica.com")
	require.NoError(t, err)

	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	conta.TwoFAAtivo = true
	conta.Segredo2FA = segredo
	return conta
}

func TestVerificarSegundoFator_TOTPValido(t *testing.T) {
	conta := conta2FA(t)
	a := novoAmbiente(t, conta)

	codigo, err := totp.GenerateCode(conta.Segredo2FA, time.Now().UTC())
	require.NoError(t, err)

	rec := postJSON(a.handler.VerificarSegundoFator, map[string]string{"email": conta.Email, "codigo": codigo})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookiePorNome(t, rec, AccessCookie)
	cookiePorNome(t, rec, RefreshCookie)
	assert.Equal(t, 1, a.tokens.ativos(conta.ID))
}

func TestVerificarSegundoFator_TOTPInvalido(t *testing.T) {
	conta := conta2FA(t)
	a := novoAmbiente(t, conta)

	rec := postJSON(a.handler.VerificarSegundoFator, map[string]string{"email": conta.Email, "codigo": "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 0, a.tokens.ativos(conta.ID))
}

func TestVerificarSegundoFator_ExigeExatamenteUmFator(t *testing.T) {
	conta := conta2FA(t)
	a := novoAmbiente(t, conta)

	rec := postJSON(a.handler.VerificarSegundoFator, map[string]string{"email": conta.Email})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(a.handler.VerificarSegundoFator, map[string]string{
		"email": conta.Email, "codigo": "123456", "codigoBackup": "1111-2222",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerificarSegundoFator_CodigoBackupDeUsoUnico(t *testing.T) {
	conta := conta2FA(t)
	a := novoAmbiente(t, conta)

	codigos, hashes, err := GerarCodigosBackup()
	require.NoError(t, err)
	require.NoError(t, a.codigos.Substituir(conta.ID, hashes))

	corpo := map[string]string{"email": conta.Email, "codigoBackup": codigos[0]}

	rec := postJSON(a.handler.VerificarSegundoFator, corpo)
	assert.Equal(t, http.StatusOK, rec.Code, "primeiro uso deve passar")

	rec = postJSON(a.handler.VerificarSegundoFator, corpo)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "reuso do mesmo código deve falhar")
}

// --- refresh / rotação ---

func loginComCookies(t *testing.T, a *ambiente, conta *Conta) []*http.Cookie {
	t.Helper()
	rec := postJSON(a.handler.Login, map[string]string{"email": conta.Email, "senha": "Segredo1!"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func refreshDoResultado(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == RefreshCookie {
			return c
		}
	}
	t.Fatal("cookie de refresh ausente")
	return nil
}

func TestRefresh_RotacaoDeUsoUnico(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	original := refreshDoResultado(t, loginComCookies(t, a, conta))

	// primeira troca: sucesso, novo par emitido
	rec := postJSON(a.handler.Refresh, nil, original)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
		Usuario     struct {
			Email string `json:"email"`
		} `json:"usuario"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, conta.Email, resp.Usuario.Email)

	novo := refreshDoResultado(t, rec.Result().Cookies())
	assert.NotEqual(t, original.Value, novo.Value)

	// segunda troca com o token original: rejeitada
	rec = postJSON(a.handler.Refresh, nil, original)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// o novo token vale exatamente uma vez
	rec = postJSON(a.handler.Refresh, nil, novo)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(a.handler.Refresh, nil, novo)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_CorridaEntreDuasChamadas(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	original := refreshDoResultado(t, loginComCookies(t, a, conta))

	var wg sync.WaitGroup
	resultados := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resultados[i] = postJSON(a.handler.Refresh, nil, original).Code
		}(i)
	}
	wg.Wait()

	sucessos := 0
	for _, code := range resultados {
		if code == http.StatusOK {
			sucessos++
		} else {
			assert.Equal(t, http.StatusUnauthorized, code)
		}
	}
	assert.Equal(t, 1, sucessos, "exatamente uma das chamadas concorrentes pode vencer")
}

func TestRefresh_SemCookie(t *testing.T) {
	a := novoAmbiente(t)
	rec := postJSON(a.handler.Refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_TokenExpirado(t *testing.T) {
	conta := contaDeTeste()
	a := novoAmbiente(t, conta)

	raw, err := GerarRefreshRaw()
	require.NoError(t, err)
	require.NoError(t, a.tokens.Criar(&RefreshToken{
		UsuarioID: conta.ID,
		Hash:      HashRefreshRaw(raw),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	rec := postJSON(a.handler.Refresh, nil, &http.Cookie{Name: RefreshCookie, Value: raw})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_ContaDesativadaDepoisDoLogin(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	original := refreshDoResultado(t, loginComCookies(t, a, conta))
	conta.Ativo = false

	rec := postJSON(a.handler.Refresh, nil, original)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- logout ---

func TestLogout_SempreRespondeSucesso(t *testing.T) {
	a := novoAmbiente(t)

	rec := postJSON(a.handler.Logout, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"logout efetuado"}`, rec.Body.String())
}

func TestLogout_RevogaTodasAsSessoes(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	// duas sessões (dois dispositivos)
	cookiesA := loginComCookies(t, a, conta)
	cookiesB := loginComCookies(t, a, conta)
	require.Equal(t, 2, a.tokens.ativos(conta.ID))

	// logout do dispositivo A carregando o access token válido
	rec := postJSON(a.handler.Logout, nil, cookiesA...)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, a.tokens.ativos(conta.ID), "logout derruba todas as sessões")

	// cookies limpos na resposta
	for _, c := range rec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0, "cookie %s deve ser expirado", c.Name)
	}

	// a sessão B também perdeu o refresh
	rec = postJSON(a.handler.Refresh, nil, refreshDoResultado(t, cookiesB))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_SoComRefreshRevogaApenasEle(t *testing.T) {
	conta := contaDeTeste()
	conta.SenhaHash = hashDeTeste(t, "Segredo1!")
	a := novoAmbiente(t, conta)

	cookiesA := loginComCookies(t, a, conta)
	loginComCookies(t, a, conta)
	require.Equal(t, 2, a.tokens.ativos(conta.ID))

	// sem access token verificável, só o refresh apresentado cai
	rec := postJSON(a.handler.Logout, nil, refreshDoResultado(t, cookiesA))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, a.tokens.ativos(conta.ID))
}

func TestRevogarTodosNaoAfetaOutrosUsuarios(t *testing.T) {
	contaA := contaDeTeste()
	contaA.SenhaHash = hashDeTeste(t, "Segredo1!")
	contaB := contaDeTeste()
	contaB.ID = 9
	contaB.Email = "b@clinica.com"
	contaB.SenhaHash = contaA.SenhaHash
	a := novoAmbiente(t, contaA, contaB)

	loginComCookies(t, a, contaA)
	cookiesB := loginComCookies(t, a, contaB)

	require.NoError(t, a.tokens.RevogarTodosDoUsuario(contaA.ID))
	assert.Equal(t, 0, a.tokens.ativos(contaA.ID))
	assert.Equal(t, 1, a.tokens.ativos(contaB.ID))

	rec := postJSON(a.handler.Refresh, nil, refreshDoResultado(t, cookiesB))
	assert.Equal(t, http.StatusOK, rec.Code)
}
