package database

import (
	"MediCitas/models"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slotIndexSQL backs the one-active-cita-per-slot rule at the database level.
const slotIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_citas_slot_activa
	ON citas (clinica_id, fecha_hora) WHERE estado <> 'CANCELADA'`

// PoolConfig holds the sql.DB connection pool limits.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig mirrors the production pool sizing.
var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    40,
	MaxIdleConns:    20,
	ConnMaxLifetime: 10 * time.Minute,
}

// InitDB opens the database, configures the pool and verifies the connection.
// Schema changes are applied separately by Migrate.
func InitDB(ctx context.Context, dsn string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	logMode := logger.Silent
	if debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		PrepareStmt:                              true,
		Logger:                                   logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := configureConnectionPool(db, DefaultPoolConfig); err != nil {
		return nil, err
	}

	if err := testDatabaseConnection(ctx, db); err != nil {
		return nil, err
	}

	log.Info("database initialized")
	return db, nil
}

func configureConnectionPool(db *gorm.DB, cfg PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return nil
}

func testDatabaseConnection(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// Migrate applies the schema, the partial slot index and the seed roles.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	db = db.WithContext(ctx)
	if err := runMigrations(db); err != nil {
		return err
	}
	if err := models.SeedRoles(db); err != nil {
		return errors.Wrap(err, "failed to seed roles")
	}
	log.Info("database migrated")
	return nil
}

func runMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Rol{},
		&models.Usuario{},
		&models.Clinica{},
		&models.Cita{},
		&models.HistorialMedico{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	if err := db.Exec(slotIndexSQL).Error; err != nil {
		return errors.Wrap(err, "failed to create slot index")
	}
	return nil
}
