package database

import "inkwell/internal/models"

// PersistentModels lists every model with a table, in migration order.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.PostTag{},
		&models.Comment{},
	}
}
