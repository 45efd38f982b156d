package db

import (
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Open(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the attendance ledger relies on to detect
	// lost create-if-absent races.
	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}

	return database, nil
}

func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.OTP{},
		&models.RefreshToken{},
		&models.Station{},
		&models.Pump{},
		&models.Tank{},
		&models.Product{},
		&models.Supplier{},
		&models.Employee{},
		&models.Attendance{},
		&models.Sale{},
		&models.StockEntry{},
	)
}
