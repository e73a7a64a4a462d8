package migration

import "gorm.io/gorm"

// sqlite and mysql deployments are development conveniences; they get the
// schema through plain DDL instead of the versioned postgres migrations.
var bootstrapStatements = []string{
	`CREATE TABLE IF NOT EXISTS staff (
		id BIGINT PRIMARY KEY,
		username TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_staff_username ON staff(username)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		price BIGINT NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_menu_items_code ON menu_items(code)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		order_number TEXT NOT NULL,
		type TEXT NOT NULL,
		table_number BIGINT,
		customer TEXT,
		items TEXT NOT NULL,
		subtotal BIGINT NOT NULL,
		tax BIGINT NOT NULL,
		total BIGINT NOT NULL,
		status TEXT NOT NULL,
		server_id BIGINT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_logs TEXT NOT NULL DEFAULT '[]',
		printed_count BIGINT NOT NULL DEFAULT 0,
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_order_number ON orders(order_number)`,
	`CREATE INDEX IF NOT EXISTS ix_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS ix_orders_created_at ON orders(created_at)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT PRIMARY KEY,
		actor_type TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_audit_logs_created_at ON audit_logs(created_at)`,
}

func Bootstrap(conn *gorm.DB) error {
	for _, stmt := range bootstrapStatements {
		if err := conn.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
