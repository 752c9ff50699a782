// Package schemactx binds repository operations to a validated PostgreSQL
// schema ("archive") and caches the process-wide default archive.
package schemactx

import (
	"strings"

	"matric-memory/internal/apierr"
)

// reservedSchemas may never be targeted directly, regardless of case.
var reservedSchemas = map[string]bool{
	"pg_catalog":         true,
	"information_schema": true,
	"pg_toast":           true,
}

// reservedWords reject a schema name that collides with a SQL verb — a
// defense-in-depth check, since the name is still only ever used as a
// quoted identifier, never concatenated into a statement body.
var reservedWords = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"drop": true, "create": true, "alter": true, "grant": true,
	"revoke": true, "truncate": true,
}

// ValidateSchemaName enforces the schema-name contract: non-empty,
// at most 63 bytes, first character a letter or underscore, remaining
// characters alphanumeric or underscore, and not one of the reserved
// catalog schemas or SQL verbs (checked case-insensitively). "public" is
// explicitly allowed.
func ValidateSchemaName(name string) error {
	if name == "" {
		return apierr.New(apierr.KindInvalidInput, "schema name must not be empty")
	}
	if len(name) > 63 {
		return apierr.New(apierr.KindInvalidInput, "schema name must be at most 63 bytes")
	}

	first := name[0]
	if !isLetter(first) && first != '_' {
		return apierr.New(apierr.KindInvalidInput, "schema name must start with a letter or underscore")
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return apierr.New(apierr.KindInvalidInput, "schema name must contain only letters, digits, and underscores")
		}
	}

	lower := strings.ToLower(name)
	if reservedSchemas[lower] {
		return apierr.New(apierr.KindInvalidInput, "schema name \""+name+"\" is reserved")
	}
	if reservedWords[lower] {
		return apierr.New(apierr.KindInvalidInput, "schema name \""+name+"\" collides with a SQL keyword")
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
