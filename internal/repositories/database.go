package repository

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/latta-clothing/storefront/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

// Repository bundles the Postgres-backed stores behind one connection pool.
type Repository struct {
	DB *sql.DB

	Product      ProductRepository
	Order        OrderRepository
	Wishlist     WishlistRepository
	User         UserRepository
	Notification NotificationRepository
}

func New(cfg *config.Config) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		DB:           db,
		Product:      NewProductRepo(db),
		Order:        NewOrderRepo(db),
		Wishlist:     NewWishlistRepo(db),
		User:         NewUserRepo(db),
		Notification: NewNotificationRepo(db),
	}, nil
}

func (r *Repository) Close() error {
	return r.DB.Close()
}
