package usuario

import "gorm.io/gorm"

// Papéis da equipe da clínica.
const (
	RoleAdmin         = "ADMIN"
	RoleVeterinario   = "VETERINARIO"
	RoleAssistente    = "ASSISTENTE"
	RoleRecepcionista = "RECEPCIONISTA"
)

// Usuario é um membro da equipe de uma clínica. Contas nunca são
// excluídas, apenas desativadas (Ativo=false).
type Usuario struct {
	gorm.Model
	Nome      string `json:"nome"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Telefone  string `json:"telefone"`
	Role      string `json:"role"`
	ClinicaID uint   `json:"clinicaId" gorm:"index"`
	Ativo     bool   `json:"ativo" gorm:"default:true"`

	SenhaHash             string `json:"-"`
	PrecisaRedefinirSenha bool   `json:"-"`

	Segredo2FA string `json:"-"`
	TwoFAAtivo bool   `json:"twoFAAtivo"`
}

// RoleValido confere se o papel informado existe.
func RoleValido(role string) bool {
	switch role {
	case RoleAdmin, RoleVeterinario, RoleAssistente, RoleRecepcionista:
		return true
	}
	return false
}
