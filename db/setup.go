package db

import (
	"github.com/munhub-dev/munhub/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database and returns the handle. The handle is passed
// to handlers at construction; there is no package-level connection.
func Connect(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Committee{},
		&models.Portfolio{},
		&models.Registration{},
		&models.Payment{},
		&models.CheckIn{},
		&models.Pricing{},
		&models.EmailTemplate{},
		&models.Event{},
		&models.Attendance{},
		&models.Mark{},
		&models.Resource{},
		&models.Popup{},
		&models.ContactMessage{},
		&models.ActivityLog{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
