// Package batches persists cultivation batches in the local SQLite database.
//
// Rows hold the batch's raw JSON object keyed by its id. Upserting an existing
// id keeps the row in place, so GetAll returns batches in the order they were
// first stored.
//
//	repo := batches.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, b)
//	list, _ := repo.GetAll(ctx)
package batches
