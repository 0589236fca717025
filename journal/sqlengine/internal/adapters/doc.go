// Package adapters lets the SQL journal run on pgxpool.Pool, sql.DB or sqlx.DB.
//
// Queries are fully interpolated by goqu before they reach an adapter, so the
// adapters only pass SQL strings through and wrap the driver's rows and results.
package adapters
