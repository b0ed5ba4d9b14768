package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"servicehours/internal/models"
	"servicehours/internal/slots"
)

const hourColumns = `id, day, open, close, enforce_one_sitting, ignore_booking_duration, created_at, updated_at`

// ReplaceServiceHours заменяет недельное расписание ресторана на один день
func (db *DB) ReplaceServiceHours(ctx context.Context, restaurantID int64, day string, windows []slots.ServiceWindow) error {
	canonical, err := validateHours(day, windows)
	if err != nil {
		return err
	}
	if _, err := db.GetRestaurant(ctx, restaurantID); err != nil {
		return err
	}

	return db.replaceHours(ctx,
		`DELETE FROM service_hours WHERE restaurant_id = ? AND day = ?`,
		`INSERT INTO service_hours (restaurant_id, day, open, close, enforce_one_sitting, ignore_booking_duration, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		restaurantID, canonical, windows)
}

// ReplaceSpecialServiceHours заменяет расписание особого периода на один день
func (db *DB) ReplaceSpecialServiceHours(ctx context.Context, periodID int64, day string, windows []slots.ServiceWindow) error {
	canonical, err := validateHours(day, windows)
	if err != nil {
		return err
	}
	if _, err := db.GetSpecialPeriod(ctx, periodID); err != nil {
		return err
	}

	return db.replaceHours(ctx,
		`DELETE FROM special_service_hours WHERE period_id = ? AND day = ?`,
		`INSERT INTO special_service_hours (period_id, day, open, close, enforce_one_sitting, ignore_booking_duration, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		periodID, canonical, windows)
}

func validateHours(day string, windows []slots.ServiceWindow) (string, error) {
	canonical, err := models.CanonicalDay(day)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return "", fmt.Errorf("window %d: %w", i, err)
		}
	}
	return canonical, nil
}

func (db *DB) replaceHours(ctx context.Context, deleteQuery, insertQuery string, ownerID int64, day string, windows []slots.ServiceWindow) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID, day); err != nil {
		return fmt.Errorf("delete hours: %w", err)
	}

	now := time.Now()
	for _, w := range windows {
		open, _ := slots.ParseTimeOfDay(w.Open)
		closeAt, _ := slots.ParseTimeOfDay(w.Close)
		if _, err := tx.ExecContext(ctx, insertQuery,
			ownerID, day,
			open.Format(slots.TimeLayout), closeAt.Format(slots.TimeLayout),
			w.EnforceOneSitting, w.IgnoreBookingDuration,
			now, now,
		); err != nil {
			return fmt.Errorf("insert hours: %w", err)
		}
	}

	return tx.Commit()
}

// ServiceHours возвращает обычное расписание на день недели, по времени открытия
func (db *DB) ServiceHours(ctx context.Context, restaurantID int64, day string) ([]models.ServiceHour, error) {
	query := `SELECT ` + hourColumns + ` FROM service_hours WHERE restaurant_id = ? AND day = ? ORDER BY open, id`

	hours, err := db.queryHours(ctx, query, restaurantID, day)
	if err != nil {
		return nil, err
	}
	for i := range hours {
		hours[i].RestaurantID = restaurantID
	}
	return hours, nil
}

// SpecialServiceHours возвращает расписание особого периода на день недели
func (db *DB) SpecialServiceHours(ctx context.Context, period *models.SpecialServicePeriod, day string) ([]models.ServiceHour, error) {
	query := `SELECT ` + hourColumns + ` FROM special_service_hours WHERE period_id = ? AND day = ? ORDER BY open, id`

	hours, err := db.queryHours(ctx, query, period.ID, day)
	if err != nil {
		return nil, err
	}
	for i := range hours {
		hours[i].RestaurantID = period.RestaurantID
		hours[i].SpecialPeriodID = period.ID
	}
	return hours, nil
}

func (db *DB) queryHours(ctx context.Context, query string, ownerID int64, day string) ([]models.ServiceHour, error) {
	rows, err := db.db.QueryContext(ctx, query, ownerID, day)
	if err != nil {
		return nil, fmt.Errorf("query hours: %w", err)
	}
	defer rows.Close()

	var hours []models.ServiceHour
	for rows.Next() {
		var h models.ServiceHour
		if err := rows.Scan(
			&h.ID,
			&h.Day,
			&h.Open,
			&h.Close,
			&h.EnforceOneSitting,
			&h.IgnoreBookingDuration,
			&h.CreatedAt,
			&h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

// CreateSpecialPeriod создает особый период
func (db *DB) CreateSpecialPeriod(ctx context.Context, p *models.SpecialServicePeriod) error {
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidPeriod)
	}
	if _, err := db.GetRestaurant(ctx, p.RestaurantID); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO special_service_periods (restaurant_id, name, start_date, end_date, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	result, err := db.db.ExecContext(ctx, query,
		p.RestaurantID, p.Name,
		p.StartDate.Format(models.DateLayout), p.EndDate.Format(models.DateLayout),
		p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert special period: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

const periodColumns = `id, restaurant_id, name, start_date, end_date, created_at`

func (db *DB) GetSpecialPeriod(ctx context.Context, id int64) (*models.SpecialServicePeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM special_service_periods WHERE id = ?`

	p, err := scanPeriod(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeriodNotFound
	}
	return p, err
}

// ActiveSpecialPeriod возвращает особый период, покрывающий дату, или nil.
// При пересечении периодов побеждает созданный последним.
func (db *DB) ActiveSpecialPeriod(ctx context.Context, restaurantID int64, date time.Time) (*models.SpecialServicePeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM special_service_periods
        WHERE restaurant_id = ? AND start_date <= ? AND end_date >= ?
        ORDER BY id DESC LIMIT 1`

	d := date.Format(models.DateLayout)
	p, err := scanPeriod(db.db.QueryRowContext(ctx, query, restaurantID, d, d))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanPeriod(row rowScanner) (*models.SpecialServicePeriod, error) {
	var (
		p          models.SpecialServicePeriod
		start, end string
	)
	if err := row.Scan(&p.ID, &p.RestaurantID, &p.Name, &start, &end, &p.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.StartDate, err = time.Parse(models.DateLayout, start); err != nil {
		return nil, fmt.Errorf("parse start_date: %w", err)
	}
	if p.EndDate, err = time.Parse(models.DateLayout, end); err != nil {
		return nil, fmt.Errorf("parse end_date: %w", err)
	}
	return &p, nil
}

// ResolveWindows returns the windows that apply to the restaurant on date:
// the rows of an active special period if there is one, otherwise the weekly rows.
func (db *DB) ResolveWindows(ctx context.Context, restaurantID int64, date time.Time) ([]slots.ServiceWindow, error) {
	if _, err := db.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	day := models.DayName(date)

	period, err := db.ActiveSpecialPeriod(ctx, restaurantID, date)
	if err != nil {
		return nil, fmt.Errorf("active special period: %w", err)
	}

	var hours []models.ServiceHour
	if period != nil {
		hours, err = db.SpecialServiceHours(ctx, period, day)
	} else {
		hours, err = db.ServiceHours(ctx, restaurantID, day)
	}
	if err != nil {
		return nil, err
	}

	windows := make([]slots.ServiceWindow, 0, len(hours))
	for _, h := range hours {
		windows = append(windows, h.Window())
	}
	return windows, nil
}
