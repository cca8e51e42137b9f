// Package postgres is the durable lead store backed by pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digitalemployee/site-gateway/pkg/site/leads"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InsertContact(ctx context.Context, c leads.Contact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contacts (full_name, email, phone, city, industry, company, website, interest, contact_time, requirements, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.FullName, c.Email, c.Phone, c.City, c.Industry, c.Company,
		nullable(c.Website), c.Interest, nullable(c.ContactTime), c.Requirements, c.SubmittedAt,
	)
	return err
}

func (s *Store) InsertPartner(ctx context.Context, p leads.Partner) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO partners (full_name, email, phone, city, category, status, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.FullName, p.Email, p.Phone, p.City, p.Category, p.Status, p.AppliedAt,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
