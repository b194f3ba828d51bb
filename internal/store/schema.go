package store

const schema = `
-- The 'kv' table holds one whole-value record per logical key: the card
-- collection, the list collection, the active-list pointer, the combined
-- backup record and the cached bound-file handle.
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at DATETIME NOT NULL
);
`
