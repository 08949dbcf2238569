package auditoria

import "time"

// Tipos de evento de segurança registrados pelo sistema.
const (
	EventoLoginOK          = "login_ok"
	EventoLoginFalha       = "login_falha"
	EventoLogin2FAPendente = "login_2fa_pendente"
	Evento2FAOK            = "2fa_ok"
	Evento2FAFalha         = "2fa_falha"
	EventoRefreshOK        = "refresh_ok"
	EventoRefreshInvalido  = "refresh_invalido"
	EventoLogout           = "logout"
	EventoSenhaAlterada    = "senha_alterada"
	Evento2FAHabilitado    = "2fa_habilitado"
	EventoContaDesativada  = "conta_desativada"
	EventoWebhookRecusado  = "webhook_recusado"
)

// Evento é o registro imutável de uma ocorrência de segurança.
type Evento struct {
	ID        string `gorm:"primaryKey;size:36"`
	Tipo      string `gorm:"index;size:64"`
	UsuarioID uint   `gorm:"index"`
	Email     string
	ClinicaID uint `gorm:"index"`
	IP        string
	Detalhe   string
	CriadoEm  time.Time
}

func (Evento) TableName() string { return "eventos_auditoria" }
