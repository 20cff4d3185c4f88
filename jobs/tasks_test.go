package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	sent []SendEmailPayload
	err  error
}

func (f *fakeDeliverer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, SendEmailPayload{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func TestSendEmailJobHandle(t *testing.T) {
	deliverer := &fakeDeliverer{}
	job := NewSendEmailJob(deliverer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "alice@example.com",
		Subject: "Verify your Quickpick account",
		Body:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, deliverer.sent, 1)
	assert.Equal(t, "alice@example.com", deliverer.sent[0].To)
}

func TestSendEmailJobMalformedPayload(t *testing.T) {
	job := NewSendEmailJob(&fakeDeliverer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailJobDeliveryFailureRetries(t *testing.T) {
	sentinel := errors.New("smtp refused")
	job := NewSendEmailJob(&fakeDeliverer{err: sentinel}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, sentinel)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
