package search

// Engine.Search's ftsSearch, semanticSearch, exactTagOrTitleMatch, and
// rerankColBERT legs all require a live Postgres pool with the notes/tags/
// embeddings/token_embeddings schema and pgvector installed, and have no
// tests in this package. cache.go's Get/Set/InvalidateArchive similarly
// require a live Redis instance and are untested. The unit tests in this
// package exercise only the pure SQL
// lowering, fusion, dedup, and scoring helpers that those legs call into.
