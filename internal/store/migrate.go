package store

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "0001_base_schema",
		sql: `
			CREATE TABLE IF NOT EXISTS okrs (
				id TEXT PRIMARY KEY,
				department TEXT NOT NULL,
				goal TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'on-track',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS key_results (
				id TEXT PRIMARY KEY,
				okr_id TEXT NOT NULL REFERENCES okrs(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				start_date DATE NOT NULL,
				end_date DATE NOT NULL,
				target NUMERIC NOT NULL,
				current NUMERIC NOT NULL DEFAULT 0,
				unit TEXT NOT NULL DEFAULT '',
				target_type TEXT NOT NULL DEFAULT 'quantitative',
				order_index INT NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS progress_history (
				id BIGSERIAL PRIMARY KEY,
				key_result_id TEXT NOT NULL REFERENCES key_results(id) ON DELETE CASCADE,
				date DATE NOT NULL,
				value NUMERIC NOT NULL
			);

			CREATE TABLE IF NOT EXISTS milestone_stages (
				id TEXT PRIMARY KEY,
				key_result_id TEXT NOT NULL REFERENCES key_results(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				weight NUMERIC NOT NULL,
				progress NUMERIC NOT NULL DEFAULT 0,
				order_index INT NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS initiatives (
				id TEXT PRIMARY KEY,
				okr_id TEXT NOT NULL REFERENCES okrs(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				completed BOOLEAN NOT NULL DEFAULT FALSE,
				assignee TEXT NOT NULL DEFAULT '',
				order_index INT NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS comments (
				id TEXT PRIMARY KEY,
				initiative_id TEXT NOT NULL REFERENCES initiatives(id) ON DELETE CASCADE,
				author TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS comment_attachments (
				id TEXT PRIMARY KEY,
				comment_id TEXT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
				file_name TEXT NOT NULL,
				file_type TEXT NOT NULL DEFAULT '',
				file_url TEXT NOT NULL DEFAULT '',
				file_size BIGINT NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS check_ins (
				id TEXT PRIMARY KEY,
				okr_id TEXT NOT NULL,
				okr_goal TEXT NOT NULL,
				user_id TEXT NOT NULL,
				user_name TEXT NOT NULL,
				department TEXT NOT NULL,
				message TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS check_in_key_result_updates (
				id BIGSERIAL PRIMARY KEY,
				check_in_id TEXT NOT NULL REFERENCES check_ins(id) ON DELETE CASCADE,
				key_result_id TEXT NOT NULL,
				key_result_title TEXT NOT NULL,
				previous_value NUMERIC NOT NULL,
				new_value NUMERIC NOT NULL
			);

			CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				type TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				okr_id TEXT,
				key_result_id TEXT,
				read BOOLEAN NOT NULL DEFAULT FALSE,
				deadline DATE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				password TEXT NOT NULL,
				profile_picture TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS sessions (
				token_hash TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS company_info (
				id INT PRIMARY KEY DEFAULT 1,
				mission TEXT NOT NULL,
				vision TEXT NOT NULL,
				strategic_plan TEXT NOT NULL DEFAULT '',
				core_values TEXT NOT NULL DEFAULT '',
				CONSTRAINT company_info_singleton CHECK (id = 1)
			);

			CREATE INDEX IF NOT EXISTS idx_key_results_okr ON key_results(okr_id);
			CREATE INDEX IF NOT EXISTS idx_check_ins_okr ON check_ins(okr_id);
			CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
		`,
	},
}

// ApplyMigrations brings the database schema up to date. Migrations are
// embedded in the binary and tracked in schema_migrations, so restarts are
// idempotent.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	for _, m := range migrations {
		if migrated, err := isMigrated(ctx, db, m.version); err != nil {
			return err
		} else if migrated {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", m.version, err)
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", m.version, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES($1)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}

	return nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func isMigrated(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}
