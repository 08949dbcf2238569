package consulta

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
	"github.com/gabrielnatan/petinova-2-sub003/internal/pet"
	"github.com/gabrielnatan/petinova-2-sub003/internal/tutor"
	"github.com/gabrielnatan/petinova-2-sub003/internal/whatsapp"
)

type Handler struct {
	Repository Repository
	Pets       pet.Repository
	Tutores    tutor.Repository
	Mensagens  whatsapp.Repository
	Publicador whatsapp.Publicador
	Logger     *zap.Logger
}

func NewHandler(repo Repository, pets pet.Repository, tutores tutor.Repository, mensagens whatsapp.Repository, pub whatsapp.Publicador, logger *zap.Logger) *Handler {
	return &Handler{
		Repository: repo,
		Pets:       pets,
		Tutores:    tutores,
		Mensagens:  mensagens,
		Publicador: pub,
		Logger:     logger,
	}
}

type criarConsultaRequest struct {
	PetID         uint      `json:"petId"`
	VeterinarioID uint      `json:"veterinarioId"`
	DataHora      time.Time `json:"dataHora"`
	Motivo        string    `json:"motivo"`
}

type concluirConsultaRequest struct {
	Anotacoes   string `json:"anotacoes"`
	Diagnostico string `json:"diagnostico"`
	Prescricao  string `json:"prescricao"`
}

// CriarConsulta agenda uma consulta e dispara a confirmação por
// WhatsApp para o tutor (quando houver número cadastrado).
func (h *Handler) CriarConsulta(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var req criarConsultaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.PetID == 0 || req.VeterinarioID == 0 || req.DataHora.IsZero() {
		http.Error(w, "petId, veterinarioId e dataHora são obrigatórios", http.StatusBadRequest)
		return
	}
	if req.DataHora.Before(time.Now()) {
		http.Error(w, "dataHora não pode estar no passado", http.StatusBadRequest)
		return
	}

	p, err := h.Pets.BuscarPorID(clinicaID, req.PetID)
	if err != nil {
		http.Error(w, "pet não encontrado", http.StatusNotFound)
		return
	}

	c := Consulta{
		PetID:         p.ID,
		TutorID:       p.TutorID,
		VeterinarioID: req.VeterinarioID,
		ClinicaID:     clinicaID,
		DataHora:      req.DataHora,
		Motivo:        req.Motivo,
		Status:        StatusAgendada,
	}
	if err := h.Repository.Salvar(&c); err != nil {
		http.Error(w, "erro ao salvar consulta", http.StatusInternalServerError)
		return
	}

	h.enviarConfirmacao(r, &c, p)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// enviarConfirmacao enfileira o lembrete de agendamento; falha aqui não
// derruba o agendamento, só é logada.
func (h *Handler) enviarConfirmacao(r *http.Request, c *Consulta, p *pet.Pet) {
	t, err := h.Tutores.BuscarPorID(c.ClinicaID, c.TutorID)
	if err != nil || t.WhatsApp == "" {
		return
	}

	conteudo := fmt.Sprintf("Olá, %s! Consulta de %s agendada para %s.",
		t.Nome, p.Nome, c.DataHora.Format("02/01/2006 15:04"))

	m := whatsapp.Mensagem{
		ClinicaID: c.ClinicaID,
		Direcao:   whatsapp.DirecaoSaida,
		Numero:    t.WhatsApp,
		Conteudo:  conteudo,
		Status:    whatsapp.StatusPendente,
	}
	if err := h.Mensagens.Salvar(&m); err != nil {
		h.Logger.Warn("falha ao gravar lembrete de consulta", zap.Error(err))
		return
	}
	err = h.Publicador.Publicar(r.Context(), whatsapp.MensagemSaida{
		MensagemID: m.ID,
		ClinicaID:  c.ClinicaID,
		Numero:     m.Numero,
		Conteudo:   m.Conteudo,
	})
	if err != nil {
		h.Logger.Warn("falha ao enfileirar lembrete de consulta", zap.Error(err))
	}
}

// ListarConsultas lista por clínica; aceita ?petId= e ?data=AAAA-MM-DD
// com ?veterinarioId= para a agenda do dia.
func (h *Handler) ListarConsultas(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())
	q := r.URL.Query()

	if petID := q.Get("petId"); petID != "" {
		id, err := strconv.Atoi(petID)
		if err != nil {
			http.Error(w, "petId inválido", http.StatusBadRequest)
			return
		}
		consultas, err := h.Repository.ListarPorPet(clinicaID, uint(id))
		if err != nil {
			http.Error(w, "erro ao listar consultas", http.StatusInternalServerError)
			return
		}
		responder(w, consultas)
		return
	}

	if data := q.Get("data"); data != "" {
		dia, err := time.ParseInLocation("2006-01-02", data, time.Local)
		if err != nil {
			http.Error(w, "data inválida (use AAAA-MM-DD)", http.StatusBadRequest)
			return
		}
		var vetID int
		if v := q.Get("veterinarioId"); v != "" {
			if vetID, err = strconv.Atoi(v); err != nil {
				http.Error(w, "veterinarioId inválido", http.StatusBadRequest)
				return
			}
		}
		consultas, err := h.Repository.AgendaDoDia(clinicaID, uint(vetID), dia)
		if err != nil {
			http.Error(w, "erro ao montar agenda", http.StatusInternalServerError)
			return
		}
		responder(w, consultas)
		return
	}

	consultas, err := h.Repository.ListarPorClinica(clinicaID)
	if err != nil {
		http.Error(w, "erro ao listar consultas", http.StatusInternalServerError)
		return
	}
	responder(w, consultas)
}

// BuscarPorID devolve uma consulta da clínica.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	c, ok := h.consultaDaRota(w, r)
	if !ok {
		return
	}
	responder(w, c)
}

// Iniciar move a consulta de agendada para em_andamento.
func (h *Handler) Iniciar(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, StatusEmAndamento, nil)
}

// Concluir encerra o atendimento gravando as anotações clínicas.
func (h *Handler) Concluir(w http.ResponseWriter, r *http.Request) {
	var req concluirConsultaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	h.transicionar(w, r, StatusConcluida, func(c *Consulta) {
		c.Anotacoes = req.Anotacoes
		c.Diagnostico = req.Diagnostico
		c.Prescricao = req.Prescricao
	})
}

// Cancelar desmarca uma consulta ainda agendada.
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, StatusCancelada, nil)
}

func (h *Handler) transicionar(w http.ResponseWriter, r *http.Request, para string, aplicar func(*Consulta)) {
	c, ok := h.consultaDaRota(w, r)
	if !ok {
		return
	}

	if !PodeTransicionar(c.Status, para) {
		http.Error(w, fmt.Sprintf("transição inválida: %s -> %s", c.Status, para), http.StatusConflict)
		return
	}
	c.Status = para
	if aplicar != nil {
		aplicar(c)
	}

	if err := h.Repository.Salvar(c); err != nil {
		http.Error(w, "erro ao atualizar consulta", http.StatusInternalServerError)
		return
	}
	responder(w, c)
}

func (h *Handler) consultaDaRota(w http.ResponseWriter, r *http.Request) (*Consulta, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return nil, false
	}
	c, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "consulta não encontrada", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

func responder(w http.ResponseWriter, corpo any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(corpo)
}
