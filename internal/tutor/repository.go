package tutor

import "gorm.io/gorm"

type Repository interface {
	Salvar(t *Tutor) error
	BuscarPorID(clinicaID, id uint) (*Tutor, error)
	ListarPorClinica(clinicaID uint) ([]Tutor, error)
	Buscar(clinicaID uint, termo string) ([]Tutor, error)
	Remover(clinicaID, id uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(t *Tutor) error {
	return r.db.Save(t).Error
}

func (r *repositoryImpl) BuscarPorID(clinicaID, id uint) (*Tutor, error) {
	var t Tutor
	err := r.db.Where("clinica_id = ?", clinicaID).First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repositoryImpl) ListarPorClinica(clinicaID uint) ([]Tutor, error) {
	var tutores []Tutor
	err := r.db.Where("clinica_id = ?", clinicaID).Order("nome").Find(&tutores).Error
	return tutores, err
}

// Buscar procura por nome, email ou telefone (busca parcial, sem acento).
func (r *repositoryImpl) Buscar(clinicaID uint, termo string) ([]Tutor, error) {
	var tutores []Tutor
	padrao := "%" + termo + "%"
	err := r.db.Where("clinica_id = ?", clinicaID).
		Where("nome ILIKE ? OR email ILIKE ? OR telefone LIKE ?", padrao, padrao, padrao).
		Order("nome").
		Find(&tutores).Error
	return tutores, err
}

func (r *repositoryImpl) Remover(clinicaID, id uint) error {
	return r.db.Where("clinica_id = ?", clinicaID).Delete(&Tutor{}, id).Error
}
