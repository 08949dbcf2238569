package estoque

import (
	"errors"

	"gorm.io/gorm"
)

// ErrEstoqueInsuficiente sinaliza saída maior que o saldo do produto.
var ErrEstoqueInsuficiente = errors.New("estoque insuficiente")

type Repository interface {
	SalvarProduto(p *Produto) error
	BuscarProduto(clinicaID, id uint) (*Produto, error)
	ListarProdutos(clinicaID uint) ([]Produto, error)
	ListarEstoqueBaixo(clinicaID uint) ([]Produto, error)
	// Movimentar aplica a entrada/saída e ajusta a quantidade do produto
	// na mesma transação; saída sem saldo devolve ErrEstoqueInsuficiente.
	Movimentar(m *MovimentacaoEstoque) error
	ListarMovimentacoes(clinicaID, produtoID uint) ([]MovimentacaoEstoque, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) SalvarProduto(p *Produto) error {
	return r.db.Save(p).Error
}

func (r *repositoryImpl) BuscarProduto(clinicaID, id uint) (*Produto, error) {
	var p Produto
	if err := r.db.Where("clinica_id = ?", clinicaID).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) ListarProdutos(clinicaID uint) ([]Produto, error) {
	var produtos []Produto
	err := r.db.Where("clinica_id = ?", clinicaID).Order("nome").Find(&produtos).Error
	return produtos, err
}

func (r *repositoryImpl) ListarEstoqueBaixo(clinicaID uint) ([]Produto, error) {
	var produtos []Produto
	err := r.db.Where("clinica_id = ? AND quantidade <= minimo", clinicaID).
		Order("nome").Find(&produtos).Error
	return produtos, err
}

func (r *repositoryImpl) Movimentar(m *MovimentacaoEstoque) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var p Produto
		if err := tx.Where("clinica_id = ?", m.ClinicaID).First(&p, m.ProdutoID).Error; err != nil {
			return err
		}

		switch m.Tipo {
		case MovEntrada:
			p.Quantidade += m.Quantidade
		case MovSaida:
			if p.Quantidade < m.Quantidade {
				return ErrEstoqueInsuficiente
			}
			p.Quantidade -= m.Quantidade
		default:
			return errors.New("tipo de movimentação inválido")
		}

		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
}

func (r *repositoryImpl) ListarMovimentacoes(clinicaID, produtoID uint) ([]MovimentacaoEstoque, error) {
	var movs []MovimentacaoEstoque
	err := r.db.Where("clinica_id = ? AND produto_id = ?", clinicaID, produtoID).
		Order("created_at DESC").Find(&movs).Error
	return movs, err
}
