package fornecedor

import "gorm.io/gorm"

type Repository interface {
	Salvar(f *Fornecedor) error
	BuscarPorID(clinicaID, id uint) (*Fornecedor, error)
	ListarPorClinica(clinicaID uint) ([]Fornecedor, error)
	Remover(clinicaID, id uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(f *Fornecedor) error {
	return r.db.Save(f).Error
}

func (r *repositoryImpl) BuscarPorID(clinicaID, id uint) (*Fornecedor, error) {
	var f Fornecedor
	if err := r.db.Where("clinica_id = ?", clinicaID).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repositoryImpl) ListarPorClinica(clinicaID uint) ([]Fornecedor, error) {
	var fornecedores []Fornecedor
	err := r.db.Where("clinica_id = ?", clinicaID).Order("nome").Find(&fornecedores).Error
	return fornecedores, err
}

func (r *repositoryImpl) Remover(clinicaID, id uint) error {
	return r.db.Where("clinica_id = ?", clinicaID).Delete(&Fornecedor{}, id).Error
}
