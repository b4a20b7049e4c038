package store

import (
	"context"
	"database/sql"
	"log"
)

// schema holds the idempotent bootstrap DDL. The natural unique keys carry
// the upsert semantics: attendance keeps at most one current row per
// (student, class), ratings one per natural key, feedback one per report.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		role        TEXT NOT NULL,
		faculty     TEXT,
		stream      TEXT,
		student_code TEXT,
		class_id    BIGINT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id               BIGSERIAL PRIMARY KEY,
		class_name       TEXT NOT NULL,
		total_registered INT NOT NULL,
		faculty          TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id             BIGSERIAL PRIMARY KEY,
		course_code    TEXT NOT NULL UNIQUE,
		course_name    TEXT NOT NULL,
		stream         TEXT NOT NULL,
		venue          TEXT,
		scheduled_time TEXT,
		lecturer_id    BIGINT
	)`,
	// Duplicate (class_id, course_id) pairs are tolerated on purpose; reads
	// deduplicate by course within a class.
	`CREATE TABLE IF NOT EXISTS class_courses (
		id        BIGSERIAL PRIMARY KEY,
		class_id  BIGINT NOT NULL REFERENCES classes(id),
		course_id BIGINT NOT NULL REFERENCES courses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL,
		class_id   BIGINT NOT NULL,
		present    SMALLINT NOT NULL,
		date       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, class_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id                      BIGSERIAL PRIMARY KEY,
		faculty_name            TEXT NOT NULL,
		class_name              TEXT NOT NULL,
		week_of_reporting       TEXT NOT NULL,
		date_of_lecture         DATE NOT NULL,
		course_name             TEXT NOT NULL,
		course_code             TEXT NOT NULL,
		lecturer_name           TEXT NOT NULL,
		actual_students_present INT NOT NULL,
		total_students          INT NOT NULL,
		venue                   TEXT,
		scheduled_time          TEXT,
		topic                   TEXT,
		learning_outcomes       TEXT,
		recommendations         TEXT,
		stream                  TEXT NOT NULL,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prl_feedback (
		id         BIGSERIAL PRIMARY KEY,
		report_id  BIGINT NOT NULL UNIQUE REFERENCES reports(id),
		prl_id     BIGINT NOT NULL,
		feedback   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rating (
		id          BIGSERIAL PRIMARY KEY,
		student_id  BIGINT NOT NULL,
		lecturer_id BIGINT NOT NULL,
		rating      INT NOT NULL,
		comment     TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, lecturer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lecturer_class_ratings (
		id          BIGSERIAL PRIMARY KEY,
		lecturer_id BIGINT NOT NULL,
		class_id    BIGINT NOT NULL,
		course_id   BIGINT NOT NULL,
		rating      INT NOT NULL,
		comment     TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (lecturer_id, class_id, course_id)
	)`,
}

// Migrate applies the bootstrap schema. Safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("running schema bootstrap...")
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	log.Println("schema bootstrap complete")
	return nil
}
