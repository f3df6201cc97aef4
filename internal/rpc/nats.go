package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// ServeNats answers protocol requests published on subject, replying on
// the request's inbox. Instances sharing the queue group split the load.
func ServeNats(ctx context.Context, nc *nats.Conn, subject string, disp *Dispatcher, log *slog.Logger) error {
	sub, err := nc.QueueSubscribe(subject, "judge", func(msg *nats.Msg) {
		resp := disp.Handle(ctx, msg.Data)
		b, err := json.Marshal(resp)
		if err != nil {
			log.Error("failed to marshal response", "error", err)
			return
		}
		if err := msg.Respond(b); err != nil {
			log.Warn("failed to respond to NATS message", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	log.Info("serving judge requests over NATS", "subject", subject)
	<-ctx.Done()
	return nil
}
