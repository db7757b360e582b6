package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CATALOGUE
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create universities and agreements
-- Version: 001

CREATE TABLE IF NOT EXISTS universities (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    country VARCHAR(100) NOT NULL,
    region_code VARCHAR(8) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_universities_region ON universities(region_code);

-- An agreement offers a fixed number of places to students of given sections.
CREATE TABLE IF NOT EXISTS agreements (
    id VARCHAR(64) PRIMARY KEY,
    university_id VARCHAR(64) NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
    places INTEGER NOT NULL,
    sections TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_places CHECK (places >= 1)
);

CREATE INDEX IF NOT EXISTS idx_agreements_university ON agreements(university_id);
CREATE INDEX IF NOT EXISTS idx_agreements_sections ON agreements USING GIN (sections);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create students and their preference orders
-- Version: 002

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(200) NOT NULL DEFAULT '',
    email VARCHAR(320) NOT NULL UNIQUE,
    image TEXT NOT NULL DEFAULT '',
    section VARCHAR(8) NOT NULL,
    year SMALLINT NOT NULL DEFAULT 2,
    gpa DOUBLE PRECISION NOT NULL,
    fail BOOLEAN NOT NULL DEFAULT FALSE,
    -- Ranks published by the official allocation, aligned with the first
    -- positions of the preference order. Set externally.
    alpha_ranks INTEGER[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_year CHECK (year IN (2, 3)),
    CONSTRAINT valid_gpa CHECK (gpa >= 1 AND gpa <= 6)
);

CREATE INDEX IF NOT EXISTS idx_students_section ON students(section);
CREATE INDEX IF NOT EXISTS idx_students_created ON students(created_at, id);

-- Preference order: position 0 is the most wanted agreement.
CREATE TABLE IF NOT EXISTS student_agreements (
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    agreement_id VARCHAR(64) NOT NULL REFERENCES agreements(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,

    PRIMARY KEY (student_id, agreement_id),
    CONSTRAINT unique_position UNIQUE (student_id, position),
    CONSTRAINT valid_position CHECK (position >= 0)
);

CREATE INDEX IF NOT EXISTS idx_student_agreements_agreement ON student_agreements(agreement_id);

-- Trigger to auto-update updated_at
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_students_updated_at ON students;
CREATE TRIGGER update_students_updated_at
    BEFORE UPDATE ON students
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`
