/*
This package contains lowish-level APIs for making database queries to our
Postgres database. It streamlines the process of mapping query results to Go
types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryOne. Results are mapped onto struct
fields using `db:"column_name"` tags:

	type Encounter struct {
		ID   uuid.UUID `db:"id"`
		Name string    `db:"name"`
	}

	encounters, err := db.Query[Encounter](ctx, conn,
		`SELECT * FROM encounters WHERE user_id = $1`,
		userID,
	)

Arguments are provided using placeholders like $1, $2, etc. All arguments
will be safely escaped and mapped from their Go type to the correct Postgres
type. (This is a direct proxy to pgx.)

When querying individual fields, use the scalar variants:

	names, err := db.QueryScalar[string](ctx, conn, `SELECT name FROM encounters`)

Tip: if you want to use a slice in your query, use Postgres arrays instead
of IN:

	SELECT * FROM creatures WHERE creature_type = ANY($1)
*/
package db
