package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- DOCUMENT TABLE (vector index over knowledge-base documents)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS document SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS url ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS content ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON document TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS media_id ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS media_kind ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON document TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS document_embedding ON document FIELDS embedding HNSW DIMENSION 384 DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS document_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS document_content_ft ON document FIELDS content FULLTEXT ANALYZER document_analyzer BM25;

    -- ==========================================================================
    -- RESULT_CACHE TABLE (serialized results keyed by query hash)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS result_cache SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS key ON result_cache TYPE string;
    DEFINE FIELD IF NOT EXISTS value ON result_cache TYPE bytes;
    DEFINE FIELD IF NOT EXISTS created ON result_cache TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS expires ON result_cache TYPE datetime;

    DEFINE INDEX IF NOT EXISTS result_cache_key ON result_cache FIELDS key UNIQUE;

    -- ==========================================================================
    -- QUERY_LOG TABLE (append-only invocation records)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS query_log SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS query ON query_log TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON query_log TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS cache_hit ON query_log TYPE bool;
    DEFINE FIELD IF NOT EXISTS error ON query_log TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS error_msg ON query_log TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS result_id ON query_log TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS normalize_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS embed_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS retrieve_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS generate_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS attach_media_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS total_ms ON query_log TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created ON query_log TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS query_log_created ON query_log FIELDS created;

    -- ==========================================================================
    -- FEEDBACK TABLE (append-only user judgments, offline analysis only)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS feedback SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS result_id ON feedback TYPE string;
    DEFINE FIELD IF NOT EXISTS helpful ON feedback TYPE bool;
    DEFINE FIELD IF NOT EXISTS comment ON feedback TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON feedback TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS feedback_result ON feedback FIELDS result_id;
`
