package tutor

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
)

type Handler struct {
	Repository Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repository: repo}
}

// CriarTutor cadastra um novo tutor na clínica do usuário.
func (h *Handler) CriarTutor(w http.ResponseWriter, r *http.Request) {
	var t Tutor
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if t.Nome == "" {
		http.Error(w, "nome é obrigatório", http.StatusBadRequest)
		return
	}
	t.ID = 0
	t.ClinicaID = auth.ClinicaDoContexto(r.Context())

	if err := h.Repository.Salvar(&t); err != nil {
		http.Error(w, "erro ao salvar tutor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

// ListarTutores lista os tutores da clínica; aceita ?q= para busca.
func (h *Handler) ListarTutores(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var (
		tutores []Tutor
		err     error
	)
	if termo := r.URL.Query().Get("q"); termo != "" {
		tutores, err = h.Repository.Buscar(clinicaID, termo)
	} else {
		tutores, err = h.Repository.ListarPorClinica(clinicaID)
	}
	if err != nil {
		http.Error(w, "erro ao listar tutores", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tutores)
}

// BuscarPorID devolve um tutor da clínica.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	t, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "tutor não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// AtualizarTutor altera os dados cadastrais do tutor.
func (h *Handler) AtualizarTutor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	t, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "tutor não encontrado", http.StatusNotFound)
		return
	}

	var dados Tutor
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		t.Nome = dados.Nome
	}
	t.Email = dados.Email
	t.Telefone = dados.Telefone
	t.CPF = dados.CPF
	t.Endereco = dados.Endereco
	t.WhatsApp = dados.WhatsApp

	if err := h.Repository.Salvar(t); err != nil {
		http.Error(w, "erro ao atualizar tutor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// RemoverTutor faz a exclusão lógica do tutor.
func (h *Handler) RemoverTutor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Remover(auth.ClinicaDoContexto(r.Context()), uint(id)); err != nil {
		http.Error(w, "erro ao excluir tutor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("tutor excluído com sucesso"))
}
