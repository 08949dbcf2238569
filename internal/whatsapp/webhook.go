package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
)

// WebhookHandler recebe os eventos da API do WhatsApp. Todo POST chega
// assinado com HMAC-SHA256 do corpo (header X-Hub-Signature-256); corpo
// sem assinatura válida é descartado com 401 e auditado.
type WebhookHandler struct {
	AppSecret   string
	VerifyToken string
	Mensagens   Repository
	Auditoria   *auditoria.Registrador
	Logger      *zap.Logger
}

func NewWebhookHandler(appSecret, verifyToken string, mensagens Repository, reg *auditoria.Registrador, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		AppSecret:   appSecret,
		VerifyToken: verifyToken,
		Mensagens:   mensagens,
		Auditoria:   reg,
		Logger:      logger,
	}
}

// Verificar responde ao handshake de assinatura do webhook (GET).
func (h *WebhookHandler) Verificar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.VerifyToken {
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "token de verificação inválido", http.StatusForbidden)
}

// Receber processa um lote de eventos assinado.
func (h *WebhookHandler) Receber(w http.ResponseWriter, r *http.Request) {
	corpo, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "erro ao ler corpo", http.StatusBadRequest)
		return
	}

	if !h.assinaturaValida(r.Header.Get("X-Hub-Signature-256"), corpo) {
		h.Auditoria.Registrar(auditoria.Evento{
			Tipo:    auditoria.EventoWebhookRecusado,
			Detalhe: "assinatura HMAC inválida no webhook do WhatsApp",
		})
		http.Error(w, "assinatura inválida", http.StatusUnauthorized)
		return
	}

	var evento webhookPayload
	if err := json.Unmarshal(corpo, &evento); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	for _, m := range evento.mensagens() {
		registro := Mensagem{
			Direcao:  DirecaoEntrada,
			Numero:   m.From,
			Conteudo: m.Text.Body,
			Status:   StatusRecebida,
			WamID:    m.ID,
		}
		if err := h.Mensagens.Salvar(&registro); err != nil {
			h.Logger.Error("falha ao gravar mensagem recebida", zap.Error(err))
		}
	}

	// a API espera 200 rápido; reprocessamento fica por conta dela
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) assinaturaValida(header string, corpo []byte) bool {
	assinatura, ok := strings.CutPrefix(header, "sha256=")
	if !ok || h.AppSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.AppSecret))
	mac.Write(corpo)
	esperada := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(esperada), []byte(assinatura))
}

// Estrutura mínima do payload de webhook da API Cloud do WhatsApp.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []mensagemRecebida `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type mensagemRecebida struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (p *webhookPayload) mensagens() []mensagemRecebida {
	var todas []mensagemRecebida
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			todas = append(todas, c.Value.Messages...)
		}
	}
	return todas
}
