package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/solacelabs/solace-backend/internal/model/chat"
	"github.com/solacelabs/solace-backend/internal/model/emotion"
	"github.com/solacelabs/solace-backend/internal/model/mood"
	"github.com/solacelabs/solace-backend/internal/model/preference"
	"github.com/solacelabs/solace-backend/internal/model/user"
)

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&chat.Conversation{},
		&chat.Message{},
		&emotion.Record{},
		&mood.Entry{},
		&preference.Preference{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
