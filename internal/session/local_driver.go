package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/Presence/internal/domain"
)

// authMarker — файл в каталоге профиля, свидетельствующий
// о пройденной авторизации. Создаётся командой login в CLI.
const authMarker = "auth.json"

// actionsLog — журнал выполненных действий внутри профиля.
const actionsLog = "actions.log"

// LocalDriver — драйвер с файловым профилем вместо реального браузера.
// Используется в разработке и в тестах: действия записываются
// в журнал профиля, авторизация проверяется по маркерному файлу.
type LocalDriver struct {
	// Latency имитирует длительность действия. Ноль — без задержки.
	Latency time.Duration
}

var _ Driver = (*LocalDriver)(nil)

// Open открывает локальную сессию поверх каталога профиля.
func (d *LocalDriver) Open(_ context.Context, platform domain.Platform, profileDir string) (Context, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	return &localContext{
		platform:   platform,
		profileDir: profileDir,
		latency:    d.Latency,
	}, nil
}

type localContext struct {
	platform   domain.Platform
	profileDir string
	latency    time.Duration
	closed     bool
}

var _ Context = (*localContext)(nil)

func (c *localContext) Verify(_ context.Context) error {
	if c.closed {
		return fmt.Errorf("session closed")
	}

	if _, err := os.Stat(filepath.Join(c.profileDir, authMarker)); err != nil {
		if os.IsNotExist(err) {
			return ErrLoginRequired
		}
		return fmt.Errorf("check auth marker: %w", err)
	}

	return nil
}

func (c *localContext) Perform(ctx context.Context, action Action) (map[string]any, error) {
	if c.closed {
		return nil, fmt.Errorf("session closed")
	}

	// Параметр fail имитирует типизированные провалы платформы.
	if mode, ok := action.Params["fail"].(string); ok {
		switch mode {
		case "target_not_found":
			return nil, ErrTargetNotFound
		case "rate_limited":
			return nil, ErrRateLimited
		case "network":
			return nil, ErrNetwork
		default:
			return nil, fmt.Errorf("unknown fail mode %q", mode)
		}
	}

	if c.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.latency):
		}
	}

	record := map[string]any{
		"platform":    string(c.platform),
		"action":      action.Name,
		"params":      action.Params,
		"executed_at": time.Now().UTC().Format(time.RFC3339),
	}

	line, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal action record: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(c.profileDir, actionsLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open actions log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("append action record: %w", err)
	}

	return record, nil
}

func (c *localContext) Close() error {
	c.closed = true
	return nil
}

// MarkAuthorized создаёт маркер авторизации в каталоге профиля.
// Вызывается CLI-командой login после ручного входа.
func MarkAuthorized(profileDir, account string, platform domain.Platform) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	marker := map[string]any{
		"account":       account,
		"platform":      string(platform),
		"authorized_at": time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal auth marker: %w", err)
	}

	if err := os.WriteFile(filepath.Join(profileDir, authMarker), data, 0o600); err != nil {
		return fmt.Errorf("write auth marker: %w", err)
	}

	return nil
}
