// Package repo — журнал запусков воркеров в PostgreSQL (pgx).
//
// Журнал не хранит запланированные пробуждения: после перезапуска
// процесса воркеры создаются заново и планируют себя сами.
//
//	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
//	if err := repo.EnsureSchema(ctx, pool); err != nil { ... }
//
//	journal := repo.NewJournalListener(repo.JournalConfig{
//	    Journal: repo.NewWorkerRepo(pool),
//	})
//	defer journal.Close()
package repo
