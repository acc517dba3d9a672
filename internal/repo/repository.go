package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/servicepoller/internal/domain"
)

// ErrNotFound is returned when an id does not name a live record.
var ErrNotFound = errors.New("service not found")

// UpdateFunc receives the current record and returns its replacement.
type UpdateFunc func(domain.Service) domain.Service

// ServiceStore is the port every persistence adapter implements.
//
// List returns a point-in-time snapshot ordered by id. Upsert inserts when the
// id is zero (assigning id and created) and otherwise overwrites the existing
// record in place, keeping id and created; an unknown non-zero id yields
// ErrNotFound. Update is an atomic read-modify-write of one record. Delete is
// idempotent.
type ServiceStore interface {
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id domain.ServiceID) (domain.Service, error)
	Upsert(ctx context.Context, s domain.Service) (domain.Service, error)
	Update(ctx context.Context, id domain.ServiceID, fn UpdateFunc) (domain.Service, error)
	Delete(ctx context.Context, id domain.ServiceID) error
}

// Closer is implemented by adapters holding connections.
type Closer interface {
	Close() error
}
