package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Deliverer performs the actual mail delivery in the worker.
type Deliverer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SendEmailJob processes TaskTypeSendEmail tasks.
type SendEmailJob struct {
	deliverer Deliverer
	logger    *slog.Logger
}

// NewSendEmailJob constructs the job handler.
func NewSendEmailJob(deliverer Deliverer, logger *slog.Logger) *SendEmailJob {
	return &SendEmailJob{deliverer: deliverer, logger: logger}
}

// Handle delivers one queued message. Malformed payloads are dropped.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.deliverer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
		j.logger.Error("deliver mail", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.logger.Info("mail delivered", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
