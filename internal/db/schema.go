package db

import "fmt"

// schemaSQL renders the schema initialization SQL. The HNSW index dimension
// is templated because it must match the embedder in use.
func schemaSQL(embeddingDimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- EXCHANGE TABLE (archive tier)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS exchange SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS participant_text ON exchange TYPE string;
    DEFINE FIELD IF NOT EXISTS agent_text ON exchange TYPE string;
    DEFINE FIELD IF NOT EXISTS participant_id ON exchange TYPE string;
    DEFINE FIELD IF NOT EXISTS participant_name ON exchange TYPE string;
    DEFINE FIELD IF NOT EXISTS channel_id ON exchange TYPE string;
    DEFINE FIELD IF NOT EXISTS timestamp ON exchange TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS embedding ON exchange TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS metadata ON exchange TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created ON exchange TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS exchange_channel ON exchange FIELDS channel_id;
    DEFINE INDEX IF NOT EXISTS exchange_participant ON exchange FIELDS participant_id;
    DEFINE INDEX IF NOT EXISTS exchange_timestamp ON exchange FIELDS timestamp;
    DEFINE INDEX IF NOT EXISTS exchange_embedding ON exchange FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- FACT TABLE (distilled statements)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS fact SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS fact_type ON fact TYPE string;
    DEFINE FIELD IF NOT EXISTS subject ON fact TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON fact TYPE string;
    DEFINE FIELD IF NOT EXISTS confidence ON fact TYPE float DEFAULT 1.0;
    DEFINE FIELD IF NOT EXISTS provenance ON fact TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS created ON fact TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS last_updated ON fact TYPE datetime DEFAULT time::now();
    -- A fact is unique per (subject, fact_type, content). The computed key
    -- plus UNIQUE index makes duplicate rows impossible regardless of the
    -- write path; the deterministic record ID gives the atomic upsert.
    DEFINE FIELD IF NOT EXISTS unique_key ON fact VALUE string::concat(subject, '|', fact_type, '|', content);
    DEFINE INDEX IF NOT EXISTS fact_unique ON fact FIELDS unique_key UNIQUE;

    DEFINE INDEX IF NOT EXISTS fact_subject ON fact FIELDS subject;
    DEFINE INDEX IF NOT EXISTS fact_type_idx ON fact FIELDS fact_type;
`, embeddingDimension)
}
