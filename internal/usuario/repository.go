package usuario

import "gorm.io/gorm"

type Repository interface {
	Salvar(u *Usuario) error
	BuscarPorID(id uint) (*Usuario, error)
	BuscarPorEmail(email string) (*Usuario, error)
	ListarPorClinica(clinicaID uint) ([]Usuario, error)
	Desativar(id uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(u *Usuario) error {
	return r.db.Save(u).Error
}

func (r *repositoryImpl) BuscarPorID(id uint) (*Usuario, error) {
	var u Usuario
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) BuscarPorEmail(email string) (*Usuario, error) {
	var u Usuario
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) ListarPorClinica(clinicaID uint) ([]Usuario, error) {
	var usuarios []Usuario
	err := r.db.Where("clinica_id = ?", clinicaID).Order("nome").Find(&usuarios).Error
	return usuarios, err
}

func (r *repositoryImpl) Desativar(id uint) error {
	return r.db.Model(&Usuario{}).Where("id = ?", id).Update("ativo", false).Error
}
