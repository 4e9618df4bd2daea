package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"neksa/internal/dto"
	"neksa/internal/mailer"
	"neksa/internal/rabbit"
	"neksa/internal/repo"
	"neksa/internal/ticket"
)

// Reader consumes registration events off the queue and turns them into
// notification mail. Failures to load records or send mail are logged and
// the message is acked anyway: notifications are best-effort and must not
// wedge the queue.
type Reader struct {
	RMQ    *rabbit.Client
	repo   repo.Repository
	mail   *mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository, mail *mailer.Mailer) *Reader {
	return &Reader{
		RMQ:  rmq,
		repo: repo,
		mail: mail,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("registration event reader started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.handle(cctx)); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("registration event reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

func (r *Reader) handle(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var msg dto.RegistrationEventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Error().Err(err).Msgf("failed to unmarshal message: %s", string(body))
			return err
		}

		zlog.Logger.Info().
			Str("kind", msg.Kind).
			Int64("registration_id", msg.RegistrationID).
			Int64("event_id", msg.EventID).
			Msg("received registration event")

		reg, err := r.repo.GetRegistrationByID(ctx, msg.RegistrationID)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Int64("registration_id", msg.RegistrationID).
				Msg("failed to load registration for notification")
			return nil
		}

		event, err := r.repo.GetEventByID(ctx, msg.EventID)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Int64("event_id", msg.EventID).
				Msg("failed to load event for notification")
			return nil
		}

		switch msg.Kind {
		case rabbit.KindRegistrationCreated:
			err = r.mail.SendConfirmation(reg.Email, reg.FullName, event.Name, ticket.Encode(reg.ID))
		case rabbit.KindEventReminder:
			err = r.mail.SendReminder(reg.Email, reg.FullName, event.Name, event.Date, event.Address)
		case rabbit.KindRegistrationAttended:
			// Check-in notifications only exist so dashboards re-query the
			// list; no mail is sent.
		default:
			zlog.Logger.Warn().Str("kind", msg.Kind).Msg("unknown message kind, skipping")
		}
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to send notification email")
		}

		return nil
	}
}
