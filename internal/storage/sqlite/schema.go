// Package sqlite provides the SQLite implementation of the Banyan
// storage interfaces using modernc.org/sqlite (CGO-free).
package sqlite

// Schema contains the SQL statements to create the database schema.
// Applied idempotently on open; the migration manager can be used instead
// for versioned upgrades.
const Schema = `
-- Persons table: one row per member of the kinship graph.
-- profile_completed = 0 marks a stub created only as a relation target.
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    phone TEXT NOT NULL UNIQUE,
    whatsapp TEXT,
    email TEXT,

    first_name TEXT NOT NULL,
    middle_name TEXT,
    last_name TEXT,

    gender TEXT,
    date_of_birth TIMESTAMP,
    blood_group TEXT,
    religion TEXT,
    community TEXT,

    education TEXT,
    occupation TEXT,
    occupation_details TEXT,

    marital_status TEXT,
    matrimonial_status TEXT,

    address TEXT,
    pincode TEXT,
    area TEXT,

    photo_url TEXT,
    profile_completed INTEGER NOT NULL DEFAULT 0,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Relations table: directed kinship edges.
-- The unique (from_id, to_id, code) key is what serializes concurrent
-- writes on the same edge.
CREATE TABLE IF NOT EXISTS relations (
    id TEXT PRIMARY KEY,
    from_id TEXT NOT NULL REFERENCES persons(id),
    to_id TEXT NOT NULL REFERENCES persons(id),
    code TEXT NOT NULL,
    label TEXT,
    status TEXT NOT NULL DEFAULT 'PENDING',

    custom_name TEXT,
    custom_photo_url TEXT,
    created_by TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    UNIQUE (from_id, to_id, code)
);

CREATE INDEX IF NOT EXISTS idx_relations_from ON relations(from_id);
CREATE INDEX IF NOT EXISTS idx_relations_to ON relations(to_id);
CREATE INDEX IF NOT EXISTS idx_relations_status ON relations(status);

-- Notifications table: append-only per-person messages.
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL REFERENCES persons(id),
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    relation_id TEXT,
    state TEXT NOT NULL DEFAULT 'UNREAD',
    read_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_person ON notifications(person_id, state);
`
