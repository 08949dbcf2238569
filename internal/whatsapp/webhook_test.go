package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
)

type repoFake struct {
	salvas []Mensagem
}

func (f *repoFake) Salvar(m *Mensagem) error {
	f.salvas = append(f.salvas, *m)
	return nil
}

func (f *repoFake) BuscarPorID(id uint) (*Mensagem, error) {
	return nil, errors.New("registro não encontrado")
}

func (f *repoFake) ListarPorNumero(clinicaID uint, numero string) ([]Mensagem, error) {
	return nil, nil
}

func (f *repoFake) AtualizarStatus(id uint, status, wamID string) error {
	return nil
}

func novoWebhook(repo Repository) *WebhookHandler {
	return NewWebhookHandler("segredo-do-app", "token-de-verificacao", repo, auditoria.NewRegistradorNulo(), zap.NewNop())
}

func assinar(segredo, corpo string) string {
	mac := hmac.New(sha256.New, []byte(segredo))
	mac.Write([]byte(corpo))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

const payloadEntrada = `{
	"entry": [{
		"changes": [{
			"value": {
				"messages": [{
					"id": "wamid.abc123",
					"from": "5511999990000",
					"text": {"body": "Olá, quero remarcar a consulta"}
				}]
			}
		}]
	}]
}`

func TestWebhook_Verificar(t *testing.T) {
	h := novoWebhook(&repoFake{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=token-de-verificacao&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verificar(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestWebhook_VerificarTokenErrado(t *testing.T) {
	h := novoWebhook(&repoFake{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=outro&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verificar(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhook_ReceberAssinaturaValida(t *testing.T) {
	repo := &repoFake{}
	h := novoWebhook(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", strings.NewReader(payloadEntrada))
	req.Header.Set("X-Hub-Signature-256", assinar("segredo-do-app", payloadEntrada))
	rec := httptest.NewRecorder()
	h.Receber(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.salvas, 1)
	m := repo.salvas[0]
	assert.Equal(t, DirecaoEntrada, m.Direcao)
	assert.Equal(t, "5511999990000", m.Numero)
	assert.Equal(t, "Olá, quero remarcar a consulta", m.Conteudo)
	assert.Equal(t, "wamid.abc123", m.WamID)
}

func TestWebhook_ReceberAssinaturaInvalida(t *testing.T) {
	repo := &repoFake{}
	h := novoWebhook(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", strings.NewReader(payloadEntrada))
	req.Header.Set("X-Hub-Signature-256", assinar("outro-segredo", payloadEntrada))
	rec := httptest.NewRecorder()
	h.Receber(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, repo.salvas)
}

func TestWebhook_ReceberSemAssinatura(t *testing.T) {
	repo := &repoFake{}
	h := novoWebhook(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", strings.NewReader(payloadEntrada))
	rec := httptest.NewRecorder()
	h.Receber(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, repo.salvas)
}

func TestWebhook_ReceberPayloadIlegivel(t *testing.T) {
	h := novoWebhook(&repoFake{})

	corpo := "isso não é json"
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", strings.NewReader(corpo))
	req.Header.Set("X-Hub-Signature-256", assinar("segredo-do-app", corpo))
	rec := httptest.NewRecorder()
	h.Receber(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
