package estoque

import (
	"encoding/json"
	"errors"
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

// CriarProduto cadastra um item de estoque.
func (h *Handler) CriarProduto(w http.ResponseWriter, r *http.Request) {
	var p Produto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Nome == "" || p.SKU == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	p.ID = 0
	p.ClinicaID = auth.ClinicaDoContexto(r.Context())

	if err := h.Repository.SalvarProduto(&p); err != nil {
		http.Error(w, "erro ao salvar produto", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// ListarProdutos lista o estoque; ?baixo=true traz só itens no mínimo.
func (h *Handler) ListarProdutos(w http.ResponseWriter, r *http.Request) {
	clinicaID := auth.ClinicaDoContexto(r.Context())

	var (
		produtos []Produto
		err      error
	)
	if r.URL.Query().Get("baixo") == "true" {
		produtos, err = h.Repository.ListarEstoqueBaixo(clinicaID)
	} else {
		produtos, err = h.Repository.ListarProdutos(clinicaID)
	}
	if err != nil {
		http.Error(w, "erro ao listar produtos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(produtos)
}

// BuscarProduto devolve um produto da clínica.
func (h *Handler) BuscarProduto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Repository.BuscarProduto(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "produto não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// AtualizarProduto altera dados cadastrais (não mexe em quantidade;
// quantidade só muda via movimentação).
func (h *Handler) AtualizarProduto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Repository.BuscarProduto(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "produto não encontrado", http.StatusNotFound)
		return
	}

	var dados Produto
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if dados.Nome != "" {
		p.Nome = dados.Nome
	}
	if dados.SKU != "" {
		p.SKU = dados.SKU
	}
	p.FornecedorID = dados.FornecedorID
	p.PrecoCusto = dados.PrecoCusto
	p.PrecoVenda = dados.PrecoVenda
	p.Minimo = dados.Minimo
	p.Validade = dados.Validade

	if err := h.Repository.SalvarProduto(p); err != nil {
		http.Error(w, "erro ao atualizar produto", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

type movimentarRequest struct {
	Tipo       string `json:"tipo"`
	Quantidade int    `json:"quantidade"`
	Motivo     string `json:"motivo"`
}

// Movimentar registra entrada/saída e ajusta o saldo do produto.
func (h *Handler) Movimentar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var req movimentarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantidade <= 0 {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.Tipo != MovEntrada && req.Tipo != MovSaida {
		http.Error(w, "tipo deve ser entrada ou saida", http.StatusBadRequest)
		return
	}

	m := MovimentacaoEstoque{
		ProdutoID:  uint(id),
		ClinicaID:  auth.ClinicaDoContexto(r.Context()),
		UsuarioID:  auth.UsuarioDoContexto(r.Context()),
		Tipo:       req.Tipo,
		Quantidade: req.Quantidade,
		Motivo:     req.Motivo,
	}
	if err := h.Repository.Movimentar(&m); err != nil {
		if errors.Is(err, ErrEstoqueInsuficiente) {
			http.Error(w, "estoque insuficiente", http.StatusConflict)
			return
		}
		http.Error(w, "erro ao movimentar estoque", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

// ListarMovimentacoes devolve a trilha de um produto.
func (h *Handler) ListarMovimentacoes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	movs, err := h.Repository.ListarMovimentacoes(auth.ClinicaDoContexto(r.Context()), uint(id))
	if err != nil {
		http.Error(w, "erro ao listar movimentações", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movs)
}
