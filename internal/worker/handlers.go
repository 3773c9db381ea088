package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/session"
)

// handleJobEnqueued будит воркеров при появлении нового задания.
//
// Сообщение — только подсказка: задание достаётся из Job Store
// атомарным claim, а не из тела сообщения.
func (p *Pool) handleJobEnqueued(_ context.Context, msg *mq.Delivery) error {
	if msg.Message.Type != mq.MessageTypeJobEnqueued {
		return fmt.Errorf("unexpected message type: %s", msg.Message.Type)
	}

	select {
	case p.nudge <- struct{}{}:
	default:
		// Воркеры уже разбужены.
	}

	return nil
}

// handleControl обрабатывает управляющие команды для воркера.
// Воркера касается только disconnect; остальные команды адресованы
// диспетчеру и молча подтверждаются.
func (p *Pool) handleControl(ctx context.Context, msg *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.ControlPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse control payload: %w", err)
	}

	if payload.Command != mq.ControlDisconnect {
		return nil
	}

	key := session.Key{Account: payload.Account, Platform: payload.Platform}
	if err := p.sessions.Disconnect(ctx, key); err != nil {
		if errors.Is(err, session.ErrSessionBusy) {
			// Сессия выполняет действие; команду не переигрываем,
			// инициатор может отправить disconnect ещё раз.
			p.logger.Warn("disconnect refused, session busy", "session", key.String())
			return nil
		}
		return fmt.Errorf("disconnect %s: %w", key, err)
	}

	p.logger.Info("session disconnected by control command", "session", key.String())
	return nil
}
