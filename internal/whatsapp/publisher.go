package whatsapp

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Fila durável de mensagens de saída.
const FilaSaida = "whatsapp.outbound"

// Publicador enfileira mensagens para envio assíncrono.
type Publicador interface {
	Publicar(ctx context.Context, msg MensagemSaida) error
}

// publicadorAMQP publica na fila whatsapp.outbound do RabbitMQ.
type publicadorAMQP struct {
	canal  *amqp.Channel
	logger *zap.Logger
}

// NewPublicador abre canal no broker e garante a fila declarada.
func NewPublicador(conn *amqp.Connection, logger *zap.Logger) (Publicador, error) {
	canal, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := canal.QueueDeclare(FilaSaida, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &publicadorAMQP{canal: canal, logger: logger}, nil
}

func (p *publicadorAMQP) Publicar(ctx context.Context, msg MensagemSaida) error {
	corpo, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.canal.PublishWithContext(ctx, "", FilaSaida, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         corpo,
	})
	if err != nil {
		p.logger.Error("falha ao publicar mensagem de WhatsApp", zap.Error(err))
	}
	return err
}

// PublicadorNulo descarta mensagens; usado quando o broker está desabilitado.
type PublicadorNulo struct{}

func (PublicadorNulo) Publicar(context.Context, MensagemSaida) error { return nil }
