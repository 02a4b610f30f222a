package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS toast_history (
	id              TEXT PRIMARY KEY,
	notification_id TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	kind            TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL DEFAULT '',
	action_url      TEXT NOT NULL DEFAULT '',
	shown_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_toast_history_user ON toast_history(user_id, shown_at DESC);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
