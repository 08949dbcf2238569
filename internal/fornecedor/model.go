package fornecedor

import "gorm.io/gorm"

// Fornecedor abastece o estoque da clínica.
type Fornecedor struct {
	gorm.Model
	Nome      string `json:"nome"`
	CNPJ      string `json:"cnpj" gorm:"index"`
	Email     string `json:"email"`
	Telefone  string `json:"telefone"`
	ClinicaID uint   `json:"clinicaId" gorm:"index"`
}
