package usuario

import "github.com/gabrielnatan/petinova-2-sub003/internal/auth"

// contaStore adapta o Repository para a visão mínima que o fluxo de
// autenticação consome (auth.ContaStore).
type contaStore struct {
	repo Repository
}

func NewContaStore(repo Repository) auth.ContaStore {
	return &contaStore{repo: repo}
}

func (s *contaStore) BuscarPorEmail(email string) (*auth.Conta, error) {
	u, err := s.repo.BuscarPorEmail(email)
	if err != nil {
		return nil, err
	}
	return comoConta(u), nil
}

func (s *contaStore) BuscarPorID(id uint) (*auth.Conta, error) {
	u, err := s.repo.BuscarPorID(id)
	if err != nil {
		return nil, err
	}
	return comoConta(u), nil
}

func comoConta(u *Usuario) *auth.Conta {
	return &auth.Conta{
		ID:         u.ID,
		Nome:       u.Nome,
		Email:      u.Email,
		Role:       u.Role,
		ClinicaID:  u.ClinicaID,
		SenhaHash:  u.SenhaHash,
		Ativo:      u.Ativo,
		TwoFAAtivo: u.TwoFAAtivo,
		Segredo2FA: u.Segredo2FA,
	}
}
