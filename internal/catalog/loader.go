package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"doctor-booking-api/internal/model"
)

// LoadFile reads a JSON array of doctors.
func LoadFile(path string) ([]model.Doctor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read doctors file: %w", err)
	}
	var doctors []model.Doctor
	if err := json.Unmarshal(b, &doctors); err != nil {
		return nil, fmt.Errorf("decode doctors file %s: %w", path, err)
	}
	return doctors, nil
}

// LoadPG reads the doctors table in position order. availability is a jsonb
// object of weekday -> ["HH:MM", ...].
func LoadPG(ctx context.Context, pool *pgxpool.Pool) ([]model.Doctor, error) {
	rows, err := pool.Query(ctx,
		`SELECT id, name, specialization, profile_image, rating, experience,
		        location, about, availability, is_available
		 FROM doctors
		 ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Specialization, &d.ProfileImage, &d.Rating, &d.Experience,
			&d.Location, &d.About, &d.Availability, &d.IsAvailable,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SeedPG inserts doctors that are not present yet, keeping slice order as position.
func SeedPG(ctx context.Context, pool *pgxpool.Pool, doctors []model.Doctor) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, d := range doctors {
		_, err = tx.Exec(ctx,
			`INSERT INTO doctors (id, position, name, specialization, profile_image, rating,
			                      experience, location, about, availability, is_available)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 ON CONFLICT (id) DO NOTHING`,
			d.ID, i, d.Name, d.Specialization, d.ProfileImage, d.Rating,
			d.Experience, d.Location, d.About, d.Availability, d.IsAvailable,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
