package tutor

import "gorm.io/gorm"

// Tutor é o responsável pelos pets (cliente da clínica).
// Exclusão é sempre lógica (soft delete do gorm): o histórico clínico
// dos pets referencia o tutor para sempre.
type Tutor struct {
	gorm.Model
	Nome      string `json:"nome"`
	Email     string `json:"email" gorm:"index"`
	Telefone  string `json:"telefone" gorm:"index"`
	CPF       string `json:"cpf"`
	Endereco  string `json:"endereco"`
	ClinicaID uint   `json:"clinicaId" gorm:"index"`

	// WhatsApp usado para lembretes de consulta
	WhatsApp string `json:"whatsapp"`
}
