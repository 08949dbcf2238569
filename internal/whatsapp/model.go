package whatsapp

import "gorm.io/gorm"

// Direção e status das mensagens trocadas com clientes.
const (
	DirecaoEntrada = "entrada"
	DirecaoSaida   = "saida"

	StatusPendente = "pendente"
	StatusEnviada  = "enviada"
	StatusFalha    = "falha"
	StatusRecebida = "recebida"
)

// Mensagem registra toda troca de WhatsApp com os tutores.
type Mensagem struct {
	gorm.Model
	ClinicaID uint   `json:"clinicaId" gorm:"index"`
	Direcao   string `json:"direcao"`
	Numero    string `json:"numero" gorm:"index"`
	Conteudo  string `json:"conteudo"`
	Status    string `json:"status"`
	WamID     string `json:"wamId" gorm:"index"` // id da mensagem na API do WhatsApp
}

func (Mensagem) TableName() string { return "mensagens_whatsapp" }

// MensagemSaida é o payload publicado na fila de envio.
type MensagemSaida struct {
	MensagemID uint   `json:"mensagemId"`
	ClinicaID  uint   `json:"clinicaId"`
	Numero     string `json:"numero"`
	Conteudo   string `json:"conteudo"`
}
