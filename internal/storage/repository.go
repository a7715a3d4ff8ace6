package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertReadingSQL = `INSERT INTO station_readings (
        station_no,
        recorded_at,
        oil_level_shift1,
        oil_level_shift2,
        oil_level_shift3,
        tank_capacity,
        min_oil_level
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    RETURNING id;`

	latestReadingSQL = `SELECT
        id,
        station_no,
        recorded_at,
        oil_level_shift1,
        oil_level_shift2,
        oil_level_shift3,
        tank_capacity,
        min_oil_level,
        created_at
    FROM station_readings
    WHERE station_no = $1
    ORDER BY recorded_at DESC
    LIMIT 1;`

	listRecentReadingsSQL = `SELECT
        id,
        station_no,
        recorded_at,
        oil_level_shift1,
        oil_level_shift2,
        oil_level_shift3,
        tank_capacity,
        min_oil_level,
        created_at
    FROM station_readings
    WHERE station_no = $1
    ORDER BY recorded_at DESC
    LIMIT $2;`

	listAllReadingsSQL = `SELECT
        id,
        station_no,
        recorded_at,
        oil_level_shift1,
        oil_level_shift2,
        oil_level_shift3,
        tank_capacity,
        min_oil_level,
        created_at
    FROM station_readings
    WHERE station_no = $1
    ORDER BY recorded_at;`

	listReadingsBetweenSQL = `SELECT
        id,
        station_no,
        recorded_at,
        oil_level_shift1,
        oil_level_shift2,
        oil_level_shift3,
        tank_capacity,
        min_oil_level,
        created_at
    FROM station_readings
    WHERE station_no = $1
      AND recorded_at >= $2
      AND recorded_at < $3
    ORDER BY recorded_at;`

	countReadingsSQL = `SELECT COUNT(*) FROM station_readings WHERE station_no = $1;`
)

// ReadingStore defines operations for reading persistence and retrieval.
type ReadingStore interface {
	InsertReading(ctx context.Context, reading Reading) (int64, error)
	LatestReading(ctx context.Context, stationNo int) (*Reading, error)
	ListRecentReadings(ctx context.Context, stationNo, limit int) ([]Reading, error)
	ListAllReadings(ctx context.Context, stationNo int) ([]Reading, error)
	ListReadingsBetween(ctx context.Context, stationNo int, from, to time.Time) ([]Reading, error)
	CountReadings(ctx context.Context, stationNo int) (int64, error)
}

// Store provides access to station readings over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertReading appends one observation and returns its row id.
func (s *Store) InsertReading(ctx context.Context, reading Reading) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertReadingSQL,
		reading.StationNo,
		reading.Timestamp,
		reading.Shift1.String(),
		reading.Shift2.String(),
		reading.Shift3.String(),
		reading.TankCapacity.String(),
		reading.MinOilLevel.String(),
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert reading: %w", scanErr)
	}
	return id, nil
}

// LatestReading returns the most recent reading for a station, or nil
// when the station has no rows.
func (s *Store) LatestReading(ctx context.Context, stationNo int) (*Reading, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, latestReadingSQL, stationNo)
	if queryErr != nil {
		return nil, fmt.Errorf("latest reading: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return nil, rows.Err()
		}
		return nil, nil
	}
	reading, scanErr := scanReading(rows)
	if scanErr != nil {
		return nil, scanErr
	}
	return &reading, nil
}

// ListRecentReadings lists the most recent readings for a station in
// descending timestamp order.
func (s *Store) ListRecentReadings(ctx context.Context, stationNo, limit int) ([]Reading, error) {
	return s.queryReadings(ctx, listRecentReadingsSQL, "list recent readings", stationNo, limit)
}

// ListAllReadings lists a station's full sequence in ascending
// timestamp order, the order the top-up derivation consumes.
func (s *Store) ListAllReadings(ctx context.Context, stationNo int) ([]Reading, error) {
	return s.queryReadings(ctx, listAllReadingsSQL, "list all readings", stationNo)
}

// ListReadingsBetween lists readings within a time window, ascending.
func (s *Store) ListReadingsBetween(ctx context.Context, stationNo int, from, to time.Time) ([]Reading, error) {
	return s.queryReadings(ctx, listReadingsBetweenSQL, "list readings between", stationNo, from, to)
}

// CountReadings counts stored rows for a station.
func (s *Store) CountReadings(ctx context.Context, stationNo int) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countReadingsSQL, stationNo).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count readings: %w", scanErr)
	}
	return count, nil
}

func (s *Store) queryReadings(ctx context.Context, sql, op string, args ...interface{}) ([]Reading, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, sql, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", op, queryErr)
	}
	defer rows.Close()

	readings := make([]Reading, 0)
	for rows.Next() {
		reading, scanErr := scanReading(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		readings = append(readings, reading)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return readings, nil
}

func scanReading(rows pgx.Rows) (Reading, error) {
	var (
		reading     Reading
		shift1Str   string
		shift2Str   string
		shift3Str   string
		capacityStr string
		minLevelStr string
	)

	if err := rows.Scan(
		&reading.ID,
		&reading.StationNo,
		&reading.Timestamp,
		&shift1Str,
		&shift2Str,
		&shift3Str,
		&capacityStr,
		&minLevelStr,
		&reading.CreatedAt,
	); err != nil {
		return Reading{}, err
	}

	var convErr error
	reading.Shift1, convErr = decimal.NewFromString(shift1Str)
	if convErr != nil {
		return Reading{}, fmt.Errorf("parse shift1 level: %w", convErr)
	}
	reading.Shift2, convErr = decimal.NewFromString(shift2Str)
	if convErr != nil {
		return Reading{}, fmt.Errorf("parse shift2 level: %w", convErr)
	}
	reading.Shift3, convErr = decimal.NewFromString(shift3Str)
	if convErr != nil {
		return Reading{}, fmt.Errorf("parse shift3 level: %w", convErr)
	}
	reading.TankCapacity, convErr = decimal.NewFromString(capacityStr)
	if convErr != nil {
		return Reading{}, fmt.Errorf("parse tank capacity: %w", convErr)
	}
	reading.MinOilLevel, convErr = decimal.NewFromString(minLevelStr)
	if convErr != nil {
		return Reading{}, fmt.Errorf("parse min oil level: %w", convErr)
	}

	return reading, nil
}
