package estoque

import (
	"time"

	"gorm.io/gorm"
)

// Tipos de movimentação de estoque.
const (
	MovEntrada = "entrada"
	MovSaida   = "saida"
)

// Produto é um item de estoque da clínica (medicamento, ração, insumo).
type Produto struct {
	gorm.Model
	Nome         string     `json:"nome"`
	SKU          string     `json:"sku" gorm:"index:idx_sku_clinica,unique"`
	ClinicaID    uint       `json:"clinicaId" gorm:"index;index:idx_sku_clinica,unique"`
	FornecedorID uint       `json:"fornecedorId" gorm:"index"`
	PrecoCusto   float64    `json:"precoCusto"`
	PrecoVenda   float64    `json:"precoVenda"`
	Quantidade   int        `json:"quantidade"`
	Minimo       int        `json:"minimo"` // alerta de estoque baixo
	Validade     *time.Time `json:"validade"`
}

// MovimentacaoEstoque registra cada entrada/saída e mantém a trilha
// que explica a quantidade atual do produto.
type MovimentacaoEstoque struct {
	gorm.Model
	ProdutoID  uint   `json:"produtoId" gorm:"index"`
	ClinicaID  uint   `json:"clinicaId" gorm:"index"`
	UsuarioID  uint   `json:"usuarioId"`
	Tipo       string `json:"tipo"` // entrada | saida
	Quantidade int    `json:"quantidade"`
	Motivo     string `json:"motivo"`
}

func (MovimentacaoEstoque) TableName() string { return "movimentacoes_estoque" }
