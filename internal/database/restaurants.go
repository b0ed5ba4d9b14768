package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"servicehours/internal/models"
)

const restaurantColumns = `id, name, booking_time_step_minutes, booking_duration, widget_booking_minutes_before,
        is_active, created_at, updated_at`

// SaveRestaurant inserts a restaurant, or updates it when ID is already set and present.
func (db *DB) SaveRestaurant(ctx context.Context, r *models.Restaurant) error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	if r.ID == 0 {
		query := `
            INSERT INTO restaurants (name, booking_time_step_minutes, booking_duration, widget_booking_minutes_before,
                is_active, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `
		result, err := db.db.ExecContext(ctx, query,
			r.Name, r.BookingTimeStepMinutes, r.BookingDuration, r.WidgetBookingMinutesBefore,
			r.IsActive, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert restaurant: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = id
		return nil
	}

	query := `
        INSERT INTO restaurants (id, name, booking_time_step_minutes, booking_duration, widget_booking_minutes_before,
            is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            booking_time_step_minutes = excluded.booking_time_step_minutes,
            booking_duration = excluded.booking_duration,
            widget_booking_minutes_before = excluded.widget_booking_minutes_before,
            is_active = excluded.is_active,
            updated_at = excluded.updated_at
    `
	if _, err := db.db.ExecContext(ctx, query,
		r.ID, r.Name, r.BookingTimeStepMinutes, r.BookingDuration, r.WidgetBookingMinutesBefore,
		r.IsActive, r.CreatedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("upsert restaurant %d: %w", r.ID, err)
	}
	return nil
}

// GetRestaurant возвращает ресторан по ID
func (db *DB) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ?`

	r, err := scanRestaurant(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return r, nil
}

// ListRestaurants возвращает все активные рестораны
func (db *DB) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE is_active = 1 ORDER BY id`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.BookingTimeStepMinutes,
		&r.BookingDuration,
		&r.WidgetBookingMinutesBefore,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
