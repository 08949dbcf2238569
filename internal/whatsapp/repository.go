package whatsapp

import "gorm.io/gorm"

type Repository interface {
	Salvar(m *Mensagem) error
	BuscarPorID(id uint) (*Mensagem, error)
	ListarPorNumero(clinicaID uint, numero string) ([]Mensagem, error)
	AtualizarStatus(id uint, status, wamID string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Salvar(m *Mensagem) error {
	return r.db.Save(m).Error
}

func (r *repositoryImpl) BuscarPorID(id uint) (*Mensagem, error) {
	var m Mensagem
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) ListarPorNumero(clinicaID uint, numero string) ([]Mensagem, error) {
	var mensagens []Mensagem
	err := r.db.Where("clinica_id = ? AND numero = ?", clinicaID, numero).
		Order("created_at").Find(&mensagens).Error
	return mensagens, err
}

func (r *repositoryImpl) AtualizarStatus(id uint, status, wamID string) error {
	valores := map[string]any{"status": status}
	if wamID != "" {
		valores["wam_id"] = wamID
	}
	return r.db.Model(&Mensagem{}).Where("id = ?", id).Updates(valores).Error
}
