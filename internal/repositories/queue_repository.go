package repositories

import (
	"database/sql"
	"sync"
)

// QueueRepository stores queued webhook messages in a durable FIFO
// list keyed by queue name. The AUTOINCREMENT position column gives
// strict arrival order across all producers.
type QueueRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewQueueRepository creates a new QueueRepository
func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Push appends a serialized message to the tail of the queue
func (r *QueueRepository) Push(queueName string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO webhook_queue (queue_name, message) VALUES (?, ?)`

	_, err := r.db.Exec(query, queueName, message)
	return err
}

// Pop removes and returns the head message of the queue. Returns
// sql.ErrNoRows semantics as ("", false, nil) when the queue is empty.
// The row is deleted in the same transaction that reads it, so a
// popped message is gone even if the consumer crashes afterwards.
func (r *QueueRepository) Pop(queueName string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback()

	query := `
		SELECT position, message
		FROM webhook_queue
		WHERE queue_name = ?
		ORDER BY position ASC
		LIMIT 1
	`

	var position int64
	var message string
	err = tx.QueryRow(query, queueName).Scan(&position, &message)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if _, err := tx.Exec(`DELETE FROM webhook_queue WHERE position = ?`, position); err != nil {
		return "", false, err
	}

	if err := tx.Commit(); err != nil {
		return "", false, err
	}

	return message, true, nil
}

// Length returns the number of messages waiting in the queue
func (r *QueueRepository) Length(queueName string) (int64, error) {
	query := `SELECT COUNT(*) FROM webhook_queue WHERE queue_name = ?`

	var count int64
	err := r.db.QueryRow(query, queueName).Scan(&count)
	return count, err
}

// Clear removes all messages from the queue
func (r *QueueRepository) Clear(queueName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM webhook_queue WHERE queue_name = ?`, queueName)
	return err
}
