package database

import (
	"log"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres. Unique violations come back as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Teacher{},
		&models.Review{},
		&models.Booking{},
		&models.Favorite{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	log.Println("✅ Database migration successful")
	return nil
}
