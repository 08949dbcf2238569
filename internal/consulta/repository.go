package consulta

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Salvar(c *Consulta) error
	BuscarPorID(clinicaID, id uint) (*Consulta, error)
	ListarPorClinica(clinicaID uint) ([]Consulta, error)
	ListarPorPet(clinicaID, petID uint) ([]Consulta, error)
	AgendaDoDia(clinicaID, veterinarioID uint, dia time.Time) ([]Consulta, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(c *Consulta) error {
	return r.db.Save(c).Error
}

func (r *repositoryImpl) BuscarPorID(clinicaID, id uint) (*Consulta, error) {
	var c Consulta
	if err := r.db.Where("clinica_id = ?", clinicaID).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) ListarPorClinica(clinicaID uint) ([]Consulta, error) {
	var consultas []Consulta
	err := r.db.Where("clinica_id = ?", clinicaID).
		Order("data_hora DESC").Find(&consultas).Error
	return consultas, err
}

func (r *repositoryImpl) ListarPorPet(clinicaID, petID uint) ([]Consulta, error) {
	var consultas []Consulta
	err := r.db.Where("clinica_id = ? AND pet_id = ?", clinicaID, petID).
		Order("data_hora DESC").Find(&consultas).Error
	return consultas, err
}

// AgendaDoDia lista as consultas de um dia; veterinarioID zero traz todas.
func (r *repositoryImpl) AgendaDoDia(clinicaID, veterinarioID uint, dia time.Time) ([]Consulta, error) {
	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, dia.Location())
	fim := inicio.Add(24 * time.Hour)

	q := r.db.Where("clinica_id = ? AND data_hora >= ? AND data_hora < ?", clinicaID, inicio, fim)
	if veterinarioID != 0 {
		q = q.Where("veterinario_id = ?", veterinarioID)
	}

	var consultas []Consulta
	err := q.Order("data_hora").Find(&consultas).Error
	return consultas, err
}
