// Package postgres provides the PostgreSQL implementation of the Banyan
// storage interfaces using lib/pq.
package postgres

// Schema contains the SQL statements to create the database schema.
// Production deployments should prefer the versioned migrations in
// migrations/; this constant exists for tests and first-boot setups.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    phone TEXT NOT NULL UNIQUE,
    whatsapp TEXT,
    email TEXT,

    first_name TEXT NOT NULL,
    middle_name TEXT,
    last_name TEXT,

    gender TEXT,
    date_of_birth TIMESTAMPTZ,
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
    profile_completed BOOLEAN NOT NULL DEFAULT FALSE,

    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

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

    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE (from_id, to_id, code)
);

CREATE INDEX IF NOT EXISTS idx_relations_from ON relations(from_id);
CREATE INDEX IF NOT EXISTS idx_relations_to ON relations(to_id);
CREATE INDEX IF NOT EXISTS idx_relations_status ON relations(status);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL REFERENCES persons(id),
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    relation_id TEXT,
    state TEXT NOT NULL DEFAULT 'UNREAD',
    read_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_person ON notifications(person_id, state);
`
