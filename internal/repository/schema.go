package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is written in the subset of SQL shared by MySQL and SQLite.
// Timestamps are stored as unix nanoseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS seasons (
		id                 VARCHAR(64)  NOT NULL PRIMARY KEY,
		name               VARCHAR(255) NOT NULL,
		season_type        VARCHAR(16)  NOT NULL,
		historical_year    INT          NOT NULL DEFAULT 0,
		start_date         BIGINT       NOT NULL,
		end_date           BIGINT       NOT NULL,
		status             VARCHAR(16)  NOT NULL,
		championship_stage VARCHAR(16)  NOT NULL,
		rules              TEXT         NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entities (
		id                   VARCHAR(64)  NOT NULL PRIMARY KEY,
		name                 VARCHAR(255) NOT NULL,
		historical_placement INT          NOT NULL,
		point_cost           INT          NOT NULL,
		comp_year            INT          NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		season_id    VARCHAR(64)  NOT NULL,
		user_id      VARCHAR(64)  NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		display_key  VARCHAR(255) NOT NULL,
		status       VARCHAR(16)  NOT NULL,
		joined_at    BIGINT       NOT NULL,
		ge1          VARCHAR(64)  NOT NULL DEFAULT '',
		ge2          VARCHAR(64)  NOT NULL DEFAULT '',
		vp           VARCHAR(64)  NOT NULL DEFAULT '',
		va           VARCHAR(64)  NOT NULL DEFAULT '',
		cg           VARCHAR(64)  NOT NULL DEFAULT '',
		brass        VARCHAR(64)  NOT NULL DEFAULT '',
		ma           VARCHAR(64)  NOT NULL DEFAULT '',
		perc         VARCHAR(64)  NOT NULL DEFAULT '',
		PRIMARY KEY (season_id, user_id),
		CONSTRAINT uq_entries_display_key UNIQUE (season_id, display_key)
	)`,
	`CREATE TABLE IF NOT EXISTS entry_changes (
		season_id   VARCHAR(64)  NOT NULL,
		user_id     VARCHAR(64)  NOT NULL,
		window_name VARCHAR(128) NOT NULL,
		used        INT          NOT NULL,
		PRIMARY KEY (season_id, user_id, window_name)
	)`,
	`CREATE TABLE IF NOT EXISTS show_results (
		season_id  VARCHAR(64) NOT NULL,
		id         VARCHAR(64) NOT NULL,
		stage      VARCHAR(16) NOT NULL,
		scores     TEXT        NOT NULL,
		created_at BIGINT      NOT NULL,
		PRIMARY KEY (season_id, id)
	)`,
}

// Migrate creates any missing tables.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
