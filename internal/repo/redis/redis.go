package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/repo"
)

const (
	keyPrefix = "poller:service:"
	keyAll    = "poller:services:all"
	keySeq    = "poller:services:seq"

	// optimistic transactions give up after this many WATCH conflicts
	maxTxRetries = 20
)

var _ repo.ServiceStore = (*Store)(nil)
var _ repo.Closer = (*Store)(nil)

type Options struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	rdb *redis.Client
	log *zap.Logger
	now func() time.Time
}

// New dials redis and pings it once with a short timeout.
func New(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctxPing).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	log.Info("redis_ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return &Store{rdb: rdb, log: log, now: time.Now}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func serviceKey(id domain.ServiceID) string {
	return keyPrefix + strconv.FormatInt(int64(id), 10)
}

// record is the stored JSON shape; status is validated on the way out.
type record struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func encode(svc domain.Service) ([]byte, error) {
	return json.Marshal(record{
		ID:          int64(svc.ID),
		Name:        svc.Name,
		URL:         svc.URL,
		Status:      string(svc.Status),
		Created:     svc.Created.UTC(),
		LastUpdated: svc.LastUpdated.UTC(),
	})
}

func decode(raw []byte) (domain.Service, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Service{}, fmt.Errorf("decode service: %w", err)
	}
	st, err := domain.ParseStatus(r.Status)
	if err != nil {
		return domain.Service{}, err
	}
	return domain.RestoreService(domain.ServiceID(r.ID), r.Name, r.URL, st, r.Created, r.LastUpdated), nil
}

// listScript reads the id set and every record in one atomic step.
var listScript = redis.NewScript(`
local ids = redis.call('SMEMBERS', KEYS[1])
local out = {}
for _, id in ipairs(ids) do
  local v = redis.call('GET', ARGV[1] .. id)
  if v then
    table.insert(out, v)
  end
end
return out
`)

func (s *Store) List(ctx context.Context) ([]domain.Service, error) {
	vals, err := listScript.Run(ctx, s.rdb, []string{keyAll}, keyPrefix).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]domain.Service, 0, len(vals))
	for _, raw := range vals {
		svc, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	raw, err := s.rdb.Get(ctx, serviceKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Service{}, repo.ErrNotFound
	}
	if err != nil {
		return domain.Service{}, fmt.Errorf("get service %d: %w", id, err)
	}
	return decode(raw)
}

func (s *Store) Upsert(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if svc.ID == 0 {
		return s.insert(ctx, svc)
	}
	in := svc
	return s.Update(ctx, svc.ID, func(cur domain.Service) domain.Service {
		return in
	})
}

func (s *Store) insert(ctx context.Context, svc domain.Service) (domain.Service, error) {
	id, err := s.rdb.Incr(ctx, keySeq).Result()
	if err != nil {
		return domain.Service{}, fmt.Errorf("allocate service id: %w", err)
	}
	svc.ID = domain.ServiceID(id)
	if svc.Created.IsZero() {
		svc.Created = s.now().UTC()
	}
	if svc.LastUpdated.IsZero() {
		svc.LastUpdated = svc.Created
	}
	if svc.Status == "" {
		svc.Status = domain.StatusUnknown
	}

	raw, err := encode(svc)
	if err != nil {
		return domain.Service{}, err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, serviceKey(svc.ID), raw, 0)
		pipe.SAdd(ctx, keyAll, strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return domain.Service{}, fmt.Errorf("insert service: %w", err)
	}
	return svc, nil
}

// Update runs fn inside a WATCH/MULTI transaction and retries on conflict.
// fn may be invoked more than once.
func (s *Store) Update(ctx context.Context, id domain.ServiceID, fn repo.UpdateFunc) (domain.Service, error) {
	key := serviceKey(id)
	var out domain.Service

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decode(raw)
		if err != nil {
			return err
		}

		next := fn(cur)
		next.ID = cur.ID
		next.Created = cur.Created
		if next.LastUpdated.Before(next.Created) {
			next.LastUpdated = next.Created
		}
		enc, err := encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, enc, 0)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, repo.ErrNotFound):
			return domain.Service{}, err
		case errors.Is(err, redis.TxFailedErr):
			s.log.Debug("redis_tx_retry", zap.Int64("id", int64(id)), zap.Int("attempt", attempt+1))
			continue
		default:
			return domain.Service{}, fmt.Errorf("update service %d: %w", id, err)
		}
	}
	return domain.Service{}, fmt.Errorf("update service %d: too many concurrent writers", id)
}

func (s *Store) Delete(ctx context.Context, id domain.ServiceID) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, serviceKey(id))
		pipe.SRem(ctx, keyAll, strconv.FormatInt(int64(id), 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete service %d: %w", id, err)
	}
	return nil
}
