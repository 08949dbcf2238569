package whatsapp

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
)

// Handler expõe o envio manual e o histórico de conversas para a equipe.
type Handler struct {
	Mensagens  Repository
	Publicador Publicador
	Logger     *zap.Logger
}

func NewHandler(mensagens Repository, pub Publicador, logger *zap.Logger) *Handler {
	return &Handler{Mensagens: mensagens, Publicador: pub, Logger: logger}
}

type enviarMensagemRequest struct {
	Numero   string `json:"numero"`
	Conteudo string `json:"conteudo"`
}

// EnviarMensagem grava a mensagem como pendente e enfileira o envio.
func (h *Handler) EnviarMensagem(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var req enviarMensagemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Numero == "" || req.Conteudo == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	m := Mensagem{
		ClinicaID: clinicaID,
		Direcao:   DirecaoSaida,
		Numero:    req.Numero,
		Conteudo:  req.Conteudo,
		Status:    StatusPendente,
	}
	if err := h.Mensagens.Salvar(&m); err != nil {
		http.Error(w, "erro ao gravar mensagem", http.StatusInternalServerError)
		return
	}

	err := h.Publicador.Publicar(r.Context(), MensagemSaida{
		MensagemID: m.ID,
		ClinicaID:  clinicaID,
		Numero:     m.Numero,
		Conteudo:   m.Conteudo,
	})
	if err != nil {
		h.Logger.Error("falha ao enfileirar mensagem", zap.Error(err))
		_ = h.Mensagens.AtualizarStatus(m.ID, StatusFalha, "")
		http.Error(w, "erro ao enfileirar mensagem", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(m)
}

// ListarConversa devolve o histórico de mensagens com um número.
func (h *Handler) ListarConversa(w http.ResponseWriter, r *http.Request) {
	numero := r.URL.Query().Get("numero")
	if numero == "" {
		http.Error(w, "numero é obrigatório", http.StatusBadRequest)
		return
	}

	mensagens, err := h.Mensagens.ListarPorNumero(auth.ClinicaDoContexto(r.Context()), numero)
	if err != nil {
		http.Error(w, "erro ao listar mensagens", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mensagens)
}
