package fornecedor

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

// CriarFornecedor cadastra um fornecedor na clínica.
func (h *Handler) CriarFornecedor(w http.ResponseWriter, r *http.Request) {
	var f Fornecedor
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil || f.Nome == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	f.ID = 0
	f.ClinicaID = auth.ClinicaDoContexto(r.Context())

	if err := h.Repository.Salvar(&f); err != nil {
		http.Error(w, "erro ao salvar fornecedor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// ListarFornecedores lista os fornecedores da clínica.
func (h *Handler) ListarFornecedores(w http.ResponseWriter, r *http.Request) {
	fornecedores, err := h.Repository.ListarPorClinica(auth.ClinicaDoContexto(r.Context()))
	if err != nil {
		http.Error(w, "erro ao listar fornecedores", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fornecedores)
}

// AtualizarFornecedor altera os dados do fornecedor.
func (h *Handler) AtualizarFornecedor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	f, err := h.Repository.BuscarPorID(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "fornecedor não encontrado", http.StatusNotFound)
		return
	}

	var dados Fornecedor
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		f.Nome = dados.Nome
	}
	f.CNPJ = dados.CNPJ
	f.Email = dados.Email
	f.Telefone = dados.Telefone

	if err := h.Repository.Salvar(f); err != nil {
		http.Error(w, "erro ao atualizar fornecedor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// RemoverFornecedor faz a exclusão lógica do fornecedor.
func (h *Handler) RemoverFornecedor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repository.Remover(auth.ClinicaDoContexto(r.Context()), uint(id)); err != nil {
		http.Error(w, "erro ao excluir fornecedor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("fornecedor excluído com sucesso"))
}
