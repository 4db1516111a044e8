package models

import (
	"encoding/json"
	"time"
)

// OutboxMessage — строка транзакционного outbox: событие пишется в одной
// транзакции с мутацией рейса, фоновый sender доставляет его в Kafka.
// SentAt/LastError указатели, потому что в БД они NULL до отправки/ошибки.
type OutboxMessage struct {
	ID        int             `db:"id"`
	MessageID string          `db:"message_id"` // UUID
	Topic     string          `db:"topic"`
	Payload   json.RawMessage `db:"payload"` // JSON (хранится как JSONB)

	Status     string     `db:"status"` // pending, sent, failed
	RetryCount int        `db:"retry_count"`
	CreatedAt  time.Time  `db:"created_at"`
	SentAt     *time.Time `db:"sent_at"`
	LastError  *string    `db:"last_error"`
}
