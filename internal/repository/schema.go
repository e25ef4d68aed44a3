package repository

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. The uniqueness
// constraints are load-bearing: messages(sender_id, recipient_email) is the
// mechanism behind "one message per person", and reports(message_id,
// reporter_id) closes the duplicate-report race.
func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			credits INT NOT NULL DEFAULT 0,
			suspended BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		)`,

		`CREATE TABLE IF NOT EXISTS login_tokens (
			id CHAR(36) PRIMARY KEY,
			token_hash CHAR(64) NOT NULL,
			email VARCHAR(255) NOT NULL,
			user_id CHAR(36) NULL,
			expires_at DATETIME NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_login_tokens_hash (token_hash),
			KEY idx_login_tokens_email (email),
			CONSTRAINT fk_login_tokens_user FOREIGN KEY (user_id)
				REFERENCES users (id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id CHAR(36) PRIMARY KEY,
			sender_id CHAR(36) NOT NULL,
			recipient_email VARCHAR(255) NOT NULL,
			recipient_name VARCHAR(255) NOT NULL,
			recipient_id CHAR(36) NULL,
			content TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at DATETIME NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at DATETIME NULL,
			reminder_sent_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_messages_sender_recipient (sender_id, recipient_email),
			KEY idx_messages_recipient_id (recipient_id),
			KEY idx_messages_recipient_email (recipient_email),
			CONSTRAINT fk_messages_sender FOREIGN KEY (sender_id)
				REFERENCES users (id),
			CONSTRAINT fk_messages_recipient FOREIGN KEY (recipient_id)
				REFERENCES users (id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id CHAR(36) PRIMARY KEY,
			message_id CHAR(36) NOT NULL,
			reporter_id CHAR(36) NOT NULL,
			reason TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			reviewed_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_reports_message_reporter (message_id, reporter_id),
			KEY idx_reports_status (status),
			CONSTRAINT fk_reports_message FOREIGN KEY (message_id)
				REFERENCES messages (id),
			CONSTRAINT fk_reports_reporter FOREIGN KEY (reporter_id)
				REFERENCES users (id)
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
