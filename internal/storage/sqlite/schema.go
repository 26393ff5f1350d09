package sqlite

const schema = `
-- Issue snapshot cache (latest snapshot per issue, upserted on re-fetch)
CREATE TABLE IF NOT EXISTS issues (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL CHECK(length(title) <= 500),
    description TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    priority INTEGER NOT NULL DEFAULT 3 CHECK(priority >= 0 AND priority <= 4),
    team TEXT NOT NULL DEFAULT '',
    assignee TEXT NOT NULL DEFAULT '',
    labels TEXT NOT NULL DEFAULT '[]',     -- JSON array
    comments TEXT NOT NULL DEFAULT '[]',   -- JSON array
    relations TEXT NOT NULL DEFAULT '[]',  -- JSON array
    created_at DATETIME NOT NULL,
    updated_at DATETIME,
    completed_at DATETIME,
    canceled_at DATETIME,
    fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state);
CREATE INDEX IF NOT EXISTS idx_issues_team ON issues(team);
CREATE INDEX IF NOT EXISTS idx_issues_updated_at ON issues(updated_at);
CREATE INDEX IF NOT EXISTS idx_issues_fetched_at ON issues(fetched_at);

-- Feedback log (append-only)
CREATE TABLE IF NOT EXISTS feedback_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',   -- JSON object
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback_events(user_id);
CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback_events(created_at);

-- Engagement records, one row per (user, issue)
CREATE TABLE IF NOT EXISTS engagement_records (
    user_id TEXT NOT NULL,
    issue_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    interaction_count INTEGER NOT NULL DEFAULT 1 CHECK(interaction_count >= 1),
    last_interaction DATETIME NOT NULL,
    engagement_score REAL NOT NULL DEFAULT 0.5 CHECK(engagement_score >= 0.0 AND engagement_score <= 1.0),
    context TEXT NOT NULL DEFAULT '' CHECK(length(context) <= 200),
    PRIMARY KEY (user_id, issue_id)
);

CREATE INDEX IF NOT EXISTS idx_engagement_user_score ON engagement_records(user_id, engagement_score DESC);

-- Preference rows, one per (user, type, key); replaced on each learning pass
CREATE TABLE IF NOT EXISTS preference_records (
    user_id TEXT NOT NULL,
    pref_type TEXT NOT NULL,
    pref_key TEXT NOT NULL,
    score REAL NOT NULL CHECK(score >= 0.0 AND score <= 1.0),
    confidence REAL NOT NULL CHECK(confidence >= 0.0 AND confidence <= 1.0),
    feedback_count INTEGER NOT NULL DEFAULT 0 CHECK(feedback_count >= 0),
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, pref_type, pref_key)
);

CREATE INDEX IF NOT EXISTS idx_preferences_user ON preference_records(user_id);
`
