package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drena a fila whatsapp.outbound e envia cada mensagem à API
// do WhatsApp. Roda em goroutine própria com loop de reconexão; o
// servidor HTTP segue operando se o broker cair.
type Consumer struct {
	URL        string
	APIURL     string
	APIToken   string
	Mensagens  Repository
	Logger     *zap.Logger
	HTTPClient *http.Client
}

func NewConsumer(url, apiURL, apiToken string, mensagens Repository, logger *zap.Logger) *Consumer {
	return &Consumer{
		URL:        url,
		APIURL:     apiURL,
		APIToken:   apiToken,
		Mensagens:  mensagens,
		Logger:     logger,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Iniciar conecta ao broker e consome até o processo encerrar.
func (c *Consumer) Iniciar() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("whatsapp-consumer: falha ao conectar no broker",
				zap.Error(err), zap.Duration("retry", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumir(conn); err != nil {
			c.Logger.Warn("whatsapp-consumer: loop de consumo encerrado", zap.Error(err))
		}
		conn.Close()
		time.Sleep(time.Second)
	}
}

func (c *Consumer) consumir(conn *amqp.Connection) error {
	canal, err := conn.Channel()
	if err != nil {
		return err
	}
	defer canal.Close()

	if _, err := canal.QueueDeclare(FilaSaida, true, false, false, false, nil); err != nil {
		return err
	}
	entregas, err := canal.Consume(FilaSaida, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for entrega := range entregas {
		var msg MensagemSaida
		if err := json.Unmarshal(entrega.Body, &msg); err != nil {
			c.Logger.Warn("whatsapp-consumer: payload inválido na fila", zap.Error(err))
			_ = entrega.Reject(false)
			continue
		}

		if err := c.enviar(msg); err != nil {
			c.Logger.Warn("whatsapp-consumer: falha no envio",
				zap.Uint("mensagemId", msg.MensagemID), zap.Error(err))
			_ = c.Mensagens.AtualizarStatus(msg.MensagemID, StatusFalha, "")
			_ = entrega.Reject(false)
			continue
		}
		_ = entrega.Ack(false)
	}
	return fmt.Errorf("canal de entregas fechado")
}

// enviar faz o POST na API do WhatsApp e marca a mensagem como enviada.
func (c *Consumer) enviar(msg MensagemSaida) error {
	if c.APIURL == "" {
		return fmt.Errorf("WHATSAPP_API_URL não configurada")
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                msg.Numero,
		"type":              "text",
		"text":              map[string]string{"body": msg.Conteudo},
	}
	corpo, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, c.APIURL, bytes.NewReader(corpo))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("API do WhatsApp respondeu %d", resp.StatusCode)
	}

	var saida struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	wamID := ""
	if err := json.NewDecoder(resp.Body).Decode(&saida); err == nil && len(saida.Messages) > 0 {
		wamID = saida.Messages[0].ID
	}
	return c.Mensagens.AtualizarStatus(msg.MensagemID, StatusEnviada, wamID)
}
