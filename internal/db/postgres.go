package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chapterhq/election-api/internal/config"
	"github.com/chapterhq/election-api/internal/repository/dao"
)

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v",
		conf.Host, conf.Port, conf.User, conf.Password, conf.DBName)

	return open(postgres.Open(dsn))
}

// OpenPostgresWithURL exists for platforms that hand out a single
// connection URL instead of discrete settings.
func OpenPostgresWithURL(databaseURL string) (*gorm.DB, error) {
	return open(postgres.Open(databaseURL))
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database -> %w", err)
	}

	if err = dao.InitTables(gormDB); err != nil {
		return nil, fmt.Errorf("failed to initialize tables -> %w", err)
	}

	return gormDB, nil
}
