package infra

import (
	"fmt"

	"ananda/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial unique indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Subcategoria{},
		&model.Producto{},
		&model.Cliente{},
		&model.Caja{},
		&model.Venta{},
		&model.VentaItem{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one caja may be open at a time. A partial unique index over
		// the open rows makes the database the final arbiter of the race where
		// two clients hit "abrir" simultaneously.
		{"partial unique index on open cajas", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cajas_abierta') THEN
    CREATE UNIQUE INDEX uni_cajas_abierta ON cajas ((true)) WHERE fecha_cierre IS NULL;
  END IF;
END $$`},
		// Ticket numbers come from a dedicated sequence so they are monotonic
		// and never reused even when a venta insert rolls back.
		{"ticket number sequence",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_ticket_seq START 1`},
		// The cumpleaños panel scans clientes with a birthdate on every load.
		{"index on clientes fecha_nacimiento", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_clientes_fecha_nacimiento') THEN
    CREATE INDEX idx_clientes_fecha_nacimiento ON clientes (fecha_nacimiento)
        WHERE fecha_nacimiento IS NOT NULL;
  END IF;
END $$`},
		{"index on ventas caja_id", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_caja') THEN
    CREATE INDEX idx_ventas_caja ON ventas (caja_id);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// RunMigrations applies AutoMigrate plus schema patches. Used by integration
// tests that bring up a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Subcategoria{},
		&model.Producto{},
		&model.Cliente{},
		&model.Caja{},
		&model.Venta{},
		&model.VentaItem{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}
