// Package testutil provides an in-memory database with the production schema
// for repository and handler tests. The sqlite dialect accepts the $N
// placeholders the production queries use as long as they appear in
// increasing order without reuse, which the query style in the repository
// package guarantees.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE card_sets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE cards (
	id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	position_x INTEGER NOT NULL DEFAULT 0,
	position_y INTEGER NOT NULL DEFAULT 0,
	color TEXT NOT NULL DEFAULT '',
	is_expanded INTEGER NOT NULL DEFAULT 0,
	due_date TEXT,
	status TEXT,
	budget_type TEXT,
	budget_data TEXT,
	card_type TEXT NOT NULL DEFAULT 'standard',
	group_id TEXT,
	PRIMARY KEY (id, set_id)
);

CREATE TABLE image_cards (
	card_id TEXT NOT NULL,
	set_id TEXT NOT NULL DEFAULT '',
	image_data BLOB,
	mime_type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (card_id, set_id)
);

CREATE TABLE location_cards (
	card_id TEXT NOT NULL,
	set_id TEXT NOT NULL DEFAULT '',
	location_data TEXT,
	PRIMARY KEY (card_id, set_id)
);

CREATE TABLE itineraire_cards (
	card_id TEXT NOT NULL,
	set_id TEXT NOT NULL DEFAULT '',
	itineraire_data TEXT,
	PRIMARY KEY (card_id, set_id)
);

CREATE TABLE connections (
	start_id TEXT NOT NULL,
	end_id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT 'solid',
	color TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (start_id, end_id, set_id)
);

CREATE TABLE groups_table (
	id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	bounds_x INTEGER NOT NULL DEFAULT 0,
	bounds_y INTEGER NOT NULL DEFAULT 0,
	bounds_width INTEGER NOT NULL DEFAULT 0,
	bounds_height INTEGER NOT NULL DEFAULT 0,
	is_minimized INTEGER NOT NULL DEFAULT 0,
	original_width INTEGER,
	original_height INTEGER,
	PRIMARY KEY (id, set_id)
);

CREATE TABLE group_connections (
	start_id TEXT NOT NULL,
	end_id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT 'solid',
	color TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (start_id, end_id, set_id)
);

CREATE TABLE tasks (
	id TEXT NOT NULL,
	card_id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	due_date TEXT,
	is_completed INTEGER NOT NULL DEFAULT 0,
	completed_date TEXT,
	PRIMARY KEY (id, set_id)
);

CREATE TABLE task_connections (
	start_id TEXT NOT NULL,
	end_id TEXT NOT NULL,
	set_id TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT 'solid',
	color TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (start_id, end_id, set_id)
);

CREATE TABLE contacts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	street_number TEXT NOT NULL DEFAULT '',
	street TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT ''
);

CREATE TABLE color_legends (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	mappings TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE documents (
	id TEXT PRIMARY KEY,
	set_id TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	file_path TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE app_params (
	param_key TEXT PRIMARY KEY,
	param_value TEXT NOT NULL DEFAULT ''
);

CREATE TABLE map_tiles (
	zoom INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	image BLOB NOT NULL,
	PRIMARY KEY (zoom, x, y)
);
`

// NewTestDB opens an in-memory database with the full schema applied. The
// single-connection limit keeps every statement on the same in-memory
// instance.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
