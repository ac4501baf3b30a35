package worker

// saludo_worker.go
// Processes birthday-greeting jobs from QueueSaludo: composes and sends the
// greeting email through the circuit-breaker-guarded mailer.

import (
	"context"
	"encoding/json"
	"fmt"

	"ananda/internal/infra"
)

// SaludoJobPayload is the job envelope sent to QueueSaludo.
type SaludoJobPayload struct {
	ClienteID string `json:"cliente_id"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
}

type SaludoWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
}

func NewSaludoWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker) *SaludoWorker {
	return &SaludoWorker{mailer: mailer, breaker: breaker}
}

// Process sends the greeting. A returned error requeues the job; after the
// attempt cap it lands in the DLQ for the retry cron.
func (w *SaludoWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload SaludoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads are unrecoverable; swallow, never requeue.
		return nil
	}
	if payload.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("¡Feliz cumpleaños, %s!", payload.Nombre)
	body := fmt.Sprintf(
		"Hola %s:\n\nTodo el equipo de Ananda te desea un muy feliz cumpleaños.\n\n¡Te esperamos en la tienda con una sorpresa!",
		payload.Nombre,
	)
	return w.breaker.Execute(func() error {
		return w.mailer.Send(payload.Email, subject, body)
	})
}
