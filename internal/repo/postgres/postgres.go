package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/repo"
)

var _ repo.ServiceStore = (*Store)(nil)
var _ repo.Closer = (*Store)(nil)

const serviceColumns = `id, name, url, status, created, last_updated`

func scanService(row pgx.Row) (domain.Service, error) {
	var (
		id          int64
		name        string
		url         string
		status      string
		created     time.Time
		lastUpdated time.Time
	)
	if err := row.Scan(&id, &name, &url, &status, &created, &lastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Service{}, repo.ErrNotFound
		}
		return domain.Service{}, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Service{}, err
	}
	return domain.RestoreService(domain.ServiceID(id), name, url, st, created, lastUpdated), nil
}

func (s *Store) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+serviceColumns+`
		   FROM services
		  ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	svc, err := scanService(s.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, int64(id)))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return domain.Service{}, fmt.Errorf("get service %d: %w", id, err)
	}
	return svc, err
}

func (s *Store) Upsert(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if svc.ID == 0 {
		return s.insert(ctx, svc)
	}
	out, err := scanService(s.pool.QueryRow(ctx,
		`UPDATE services
		    SET name = $2, url = $3, status = $4, last_updated = GREATEST($5, created)
		  WHERE id = $1
		 RETURNING `+serviceColumns,
		int64(svc.ID), svc.Name, svc.URL, string(svc.Status), svc.LastUpdated))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return domain.Service{}, fmt.Errorf("update service %d: %w", svc.ID, err)
	}
	return out, err
}

func (s *Store) insert(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if svc.Created.IsZero() {
		svc.Created = s.now().UTC()
	}
	if svc.LastUpdated.IsZero() {
		svc.LastUpdated = svc.Created
	}
	if svc.Status == "" {
		svc.Status = domain.StatusUnknown
	}
	out, err := scanService(s.pool.QueryRow(ctx,
		`INSERT INTO services (name, url, status, created, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+serviceColumns,
		svc.Name, svc.URL, string(svc.Status), svc.Created, svc.LastUpdated))
	if err != nil {
		return domain.Service{}, fmt.Errorf("insert service: %w", err)
	}
	return out, nil
}

// Update locks the row for the duration of fn, which must not do I/O.
func (s *Store) Update(ctx context.Context, id domain.ServiceID, fn repo.UpdateFunc) (domain.Service, error) {
	var out domain.Service
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		cur, err := scanService(tx.QueryRow(ctx,
			`SELECT `+serviceColumns+` FROM services WHERE id = $1 FOR UPDATE`, int64(id)))
		if err != nil {
			return err
		}
		next := fn(cur)
		out, err = scanService(tx.QueryRow(ctx,
			`UPDATE services
			    SET name = $2, url = $3, status = $4, last_updated = GREATEST($5, created)
			  WHERE id = $1
			 RETURNING `+serviceColumns,
			int64(id), next.Name, next.URL, string(next.Status), next.LastUpdated))
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Service{}, err
		}
		return domain.Service{}, fmt.Errorf("update service %d: %w", id, err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id domain.ServiceID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, int64(id)); err != nil {
		return fmt.Errorf("delete service %d: %w", id, err)
	}
	return nil
}
