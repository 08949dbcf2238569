package pet

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
	"github.com/gabrielnatan/petinova-2-sub003/internal/tutor"
)

type Handler struct {
	Repository Repository
	Tutores    tutor.Repository
}

func NewHandler(repo Repository, tutores tutor.Repository) *Handler {
	return &Handler{Repository: repo, Tutores: tutores}
}

// CriarPet cadastra um pet vinculado a um tutor existente da clínica.
func (h *Handler) CriarPet(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var p Pet
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if p.Nome == "" || p.TutorID == 0 {
		http.Error(w, "nome e tutorId são obrigatórios", http.StatusBadRequest)
		return
	}
	if _, err := h.Tutores.BuscarPorID(clinicaID, p.TutorID); err != nil {
		http.Error(w, "tutor não encontrado", http.StatusNotFound)
		return
	}
	p.ID = 0
	p.ClinicaID = clinicaID

	if err := h.Repository.Salvar(&p); err != nil {
		http.Error(w, "erro ao salvar pet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// ListarPets lista os pets da clínica; aceita ?tutorId= para filtrar.
func (h *Handler) ListarPets(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var (
		pets []Pet
		err  error
	)
	if t := r.URL.Query().Get("tutorId"); t != "" {
		tutorID, convErr := strconv.Atoi(t)
		if convErr != nil {
			http.Error(w, "tutorId inválido", http.StatusBadRequest)
			return
		}
		pets, err = h.Repository.ListarPorTutor(clinicaID, uint(tutorID))
	} else {
		pets, err = h.Repository.ListarPorClinica(clinicaID)
	}
	if err != nil {
		http.Error(w, "erro ao listar pets", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pets)
}

// BuscarPorID devolve um pet da clínica.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "pet não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// AtualizarPet altera os dados cadastrais do pet.
func (h *Handler) AtualizarPet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "pet não encontrado", http.StatusNotFound)
		return
	}

	var dados Pet
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		p.Nome = dados.Nome
	}
	p.Especie = dados.Especie
	p.Raca = dados.Raca
	p.Sexo = dados.Sexo
	p.Nascimento = dados.Nascimento
	p.PesoKg = dados.PesoKg
	p.Observacao = dados.Observacao

	if err := h.Repository.Salvar(p); err != nil {
		http.Error(w, "erro ao atualizar pet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// RemoverPet faz a exclusão lógica do pet.
func (h *Handler) RemoverPet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Remover(auth.ClinicaDoContexto(r.Context()), uint(id)); err != nil {
		http.Error(w, "erro ao excluir pet", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pet excluído com sucesso"))
}
