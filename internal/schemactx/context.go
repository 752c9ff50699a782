package schemactx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/apierr"
)

// Context binds repository operations to one validated archive schema.
// Begin opens a transaction and issues SET LOCAL search_path before handing
// control to the caller, so every statement the caller runs inside txFn
// resolves unqualified table names against the bound schema.
type Context struct {
	pool   *pgxpool.Pool
	Schema string
}

// New validates schema and returns a Context bound to it. The pool handle
// is not touched until Begin is called.
func New(pool *pgxpool.Pool, schema string) (*Context, error) {
	if err := ValidateSchemaName(schema); err != nil {
		return nil, err
	}
	return &Context{pool: pool, Schema: schema}, nil
}

// Begin opens a transaction, pins search_path to Schema for its lifetime,
// and invokes txFn. The transaction commits if txFn returns nil and rolls
// back otherwise; SET LOCAL's scope ends with the transaction regardless.
func (c *Context) Begin(ctx context.Context, txFn func(tx pgx.Tx) error) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return apierr.Wrap(apierr.KindDatabase, "begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL search_path = %s", quoteIdent(c.Schema))); err != nil {
		return apierr.Wrap(apierr.KindDatabase, "bind schema "+c.Schema, err)
	}

	if err := txFn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apierr.Wrap(apierr.KindDatabase, "commit transaction", err)
	}
	return nil
}

// quoteIdent double-quotes a schema identifier for safe interpolation into
// SET LOCAL, which does not accept query parameters. Safe because the
// identifier has already passed ValidateSchemaName (alphanumeric/underscore
// only — no quote characters are possible).
func quoteIdent(ident string) string {
	return `"` + ident + `"`
}
