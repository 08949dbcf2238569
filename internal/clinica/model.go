package clinica

import "gorm.io/gorm"

// Clinica é o tenant: todo registro do sistema pertence a uma clínica.
type Clinica struct {
	gorm.Model
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj" gorm:"unique"`
	Telefone string `json:"telefone"`
	Endereco string `json:"endereco"`
	Ativa    bool   `json:"ativa" gorm:"default:true"`
}
