package auth

// Conta é a visão mínima de um usuário que o fluxo de autenticação
// precisa enxergar. O pacote usuario fornece a implementação da store.
type Conta struct {
	ID        uint
	Nome      string
	Email     string
	Role      string
	ClinicaID uint
	SenhaHash string
	Ativo     bool

	TwoFAAtivo bool
	Segredo2FA string
}

// ContaStore abstrai a consulta de contas para login e validação.
type ContaStore interface {
	BuscarPorEmail(email string) (*Conta, error)
	BuscarPorID(id uint) (*Conta, error)
}

// contaDTO é o corpo devolvido nas respostas de autenticação.
type contaDTO struct {
	ID        uint   `json:"id"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ClinicaID uint   `json:"clinicaId"`
}

func montarContaDTO(c *Conta) contaDTO {
	return contaDTO{
		ID:        c.ID,
		Nome:      c.Nome,
		Email:     c.Email,
		Role:      c.Role,
		ClinicaID: c.ClinicaID,
	}
}
