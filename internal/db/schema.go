package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmatch/internal/domain"
)

// El largo del vector debe coincidir con service.ProfileVectorDim.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quiz_responses (
	user_id      TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	interests    JSONB NOT NULL DEFAULT '[]',
	genres       JSONB NOT NULL DEFAULT '[]',
	prefs        JSONB NOT NULL DEFAULT '[]',
	availability JSONB NOT NULL DEFAULT '[]',
	location     TEXT NOT NULL DEFAULT '',
	responses    JSONB NOT NULL DEFAULT '[]',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	vector     vector(69) NOT NULL,
	traits     JSONB NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	category     TEXT NOT NULL,
	tags         JSONB NOT NULL DEFAULT '[]',
	location     TEXT NOT NULL DEFAULT '',
	duration_min INTEGER NOT NULL DEFAULT 120,
	position     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schedules (
	id         TEXT PRIMARY KEY,
	pair_key   TEXT NOT NULL UNIQUE,
	user_a     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	user_b     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	event_id   TEXT NOT NULL REFERENCES events(id),
	start_at   TIMESTAMPTZ NOT NULL,
	end_at     TIMESTAMPTZ NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS schedules_user_a_idx ON schedules (user_a);
CREATE INDEX IF NOT EXISTS schedules_user_b_idx ON schedules (user_b);
`

// SeedEvents es el catalogo inicial de actividades.
var SeedEvents = []domain.Event{
	{ID: "evt_rock_1", Title: "Campus Rock Night", Category: "concert", Tags: []string{"rock", "live", "guitar"}, Location: "Student Union Hall", DurationMin: 150},
	{ID: "evt_classical_1", Title: "String Quartet Evening", Category: "concert", Tags: []string{"classical", "strings"}, Location: "Auditorium A", DurationMin: 120},
	{ID: "evt_jazz_1", Title: "Late Night Jazz", Category: "concert", Tags: []string{"jazz", "improv"}, Location: "Basement Club", DurationMin: 120},
	{ID: "evt_museum_1", Title: "Modern Art Exhibit", Category: "museum", Tags: []string{"modern", "abstract", "gallery"}, Location: "City Museum of Art", DurationMin: 90},
	{ID: "evt_museum_2", Title: "Photography Retrospective", Category: "museum", Tags: []string{"photography", "gallery"}, Location: "Campus Gallery", DurationMin: 75},
	{ID: "evt_edm_1", Title: "EDM Night", Category: "concert", Tags: []string{"edm", "electronic", "dance"}, Location: "Field House", DurationMin: 180},
	{ID: "evt_world_1", Title: "Global Rhythms", Category: "concert", Tags: []string{"world", "folk"}, Location: "Cultural Center", DurationMin: 110},
}

// EnsureSchema crea las tablas si no existen y siembra el catalogo de eventos una sola vez.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	const insertEvent = `
		INSERT INTO events (id, title, category, tags, location, duration_min, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for i, e := range SeedEvents {
		tags, err := json.Marshal(e.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", e.ID, err)
		}
		batch.Queue(insertEvent, e.ID, e.Title, e.Category, tags, e.Location, e.DurationMin, i)
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed events: %w", err)
	}
	return nil
}
