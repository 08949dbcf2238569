package pet

import "gorm.io/gorm"

type Repository interface {
	Salvar(p *Pet) error
	BuscarPorID(clinicaID, id uint) (*Pet, error)
	ListarPorClinica(clinicaID uint) ([]Pet, error)
	ListarPorTutor(clinicaID, tutorID uint) ([]Pet, error)
	Remover(clinicaID, id uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(p *Pet) error {
	return r.db.Save(p).Error
}

func (r *repositoryImpl) BuscarPorID(clinicaID, id uint) (*Pet, error) {
	var p Pet
	if err := r.db.Where("clinica_id = ?", clinicaID).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) ListarPorClinica(clinicaID uint) ([]Pet, error) {
	var pets []Pet
	err := r.db.Where("clinica_id = ?", clinicaID).Order("nome").Find(&pets).Error
	return pets, err
}

func (r *repositoryImpl) ListarPorTutor(clinicaID, tutorID uint) ([]Pet, error) {
	var pets []Pet
	err := r.db.Where("clinica_id = ? AND tutor_id = ?", clinicaID, tutorID).
		Order("nome").Find(&pets).Error
	return pets, err
}

func (r *repositoryImpl) Remover(clinicaID, id uint) error {
	return r.db.Where("clinica_id = ?", clinicaID).Delete(&Pet{}, id).Error
}
