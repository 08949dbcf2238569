package clinica

import "gorm.io/gorm"

type Repository interface {
	Salvar(c *Clinica) error
	BuscarPorID(id uint) (*Clinica, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(c *Clinica) error {
	return r.db.Save(c).Error
}

func (r *repositoryImpl) BuscarPorID(id uint) (*Clinica, error) {
	var c Clinica
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
