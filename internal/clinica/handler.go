package clinica

import (
	"encoding/json"
	"net/http"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
)

type Handler struct {
	Repository Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repository: repo}
}

// MinhaClinica devolve os dados da clínica do usuário autenticado.
func (h *Handler) MinhaClinica(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "clínica não encontrada", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// AtualizarClinica altera os dados cadastrais (somente ADMIN).
func (h *Handler) AtualizarClinica(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "clínica não encontrada", http.StatusNotFound)
		return
	}

	var dados Clinica
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		c.Nome = dados.Nome
	}
	if dados.Telefone != "" {
		c.Telefone = dados.Telefone
	}
	if dados.Endereco != "" {
		c.Endereco = dados.Endereco
	}

	if err := h.Repository.Salvar(c); err != nil {
		http.Error(w, "erro ao atualizar clínica", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}
