// Package sqlite предоставляет встроенное хранилище на SQLite для локального
// запуска и тестов.
//
// Открытие базы:
//
//	db, err := sqlite.NewDB(ctx, "data/users.db", sqlite.DefaultDBOptions())
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
// Ошибки ограничений переводятся в доменные через shared.StorageTranslator:
//
//	tr := shared.NewStorageTranslator(reg, sqlite.Classify)
//	_, err := db.ExecContext(ctx, "INSERT INTO users (email) VALUES (?)", email)
//	if err != nil {
//		return tr.Translate(err) // "email already exists"
//	}
package sqlite
