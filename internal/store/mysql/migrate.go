package mysql

import (
	"context"
	"database/sql"
)

// Migrate creates all tables if they do not exist. Statements are
// idempotent so the server can run it on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(190) NOT NULL,
			email VARCHAR(190) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'customer',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_refresh_hash (token_hash),
			CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			used TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_reset_hash (token_hash),
			CONSTRAINT fk_reset_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS otp_codes (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(190) NOT NULL,
			code VARCHAR(12) NOT NULL,
			expires_at DATETIME NOT NULL,
			used TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_otp_email_code (email, code)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(190) NOT NULL,
			email VARCHAR(190) NOT NULL,
			phone VARCHAR(32) NOT NULL,
			city VARCHAR(120) NOT NULL DEFAULT '',
			service VARCHAR(120) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_submissions_status (status)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS notes (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			submission_id BIGINT UNSIGNED NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_notes_submission FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
			CONSTRAINT fk_notes_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS addon_products (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(190) NOT NULL,
			price_cents BIGINT NOT NULL,
			description TEXT NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			addon_product_id BIGINT UNSIGNED NOT NULL,
			quantity INT UNSIGNED NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_cart_user_product (user_id, addon_product_id),
			CONSTRAINT fk_cart_user FOREIGN KEY (user_id) REFERENCES users(id),
			CONSTRAINT fk_cart_product FOREIGN KEY (addon_product_id) REFERENCES addon_products(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			total_cents BIGINT NOT NULL,
			contact_name VARCHAR(190) NOT NULL,
			contact_email VARCHAR(190) NOT NULL,
			contact_phone VARCHAR(32) NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_orders_user (user_id),
			CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT UNSIGNED NOT NULL,
			product_name VARCHAR(190) NOT NULL,
			price_cents BIGINT NOT NULL,
			quantity INT UNSIGNED NOT NULL,
			CONSTRAINT fk_items_order FOREIGN KEY (order_id) REFERENCES orders(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS order_revisions (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT UNSIGNED NOT NULL,
			description TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_revisions_order FOREIGN KEY (order_id) REFERENCES orders(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(190) NOT NULL,
			excerpt TEXT NOT NULL,
			content MEDIUMTEXT NOT NULL,
			category VARCHAR(120) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			author_id BIGINT UNSIGNED NOT NULL,
			published_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_posts_slug (slug),
			CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES users(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			actor_id BIGINT UNSIGNED NOT NULL,
			action VARCHAR(120) NOT NULL,
			entity_type VARCHAR(64) NOT NULL,
			entity_id BIGINT UNSIGNED NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the default add-on catalog if the table is empty.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM addon_products").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []struct {
		name, desc string
		price      int64
	}{
		{"Logo Design", "Custom logo with three concepts and two revision rounds.", 200000},
		{"Landing Page", "Single-page site with copy, design and deployment.", 450000},
		{"SEO Audit", "Technical and content audit with a prioritized fix list.", 150000},
		{"Social Media Kit", "Profile, cover and post templates for three platforms.", 120000},
	}
	for _, d := range defaults {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO addon_products (name, price_cents, description, is_active) VALUES (?,?,?,1)",
			d.name, d.price, d.desc); err != nil {
			return err
		}
	}
	return nil
}
