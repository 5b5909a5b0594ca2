package staging

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/pkg/config"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/redis"
)

// SessionCache holds in-flight sessions and the per-table exclusivity
// locks. The cache is a convenience layer: losing an entry costs the
// unflushed ledger only, never flushed items or totals.
type SessionCache interface {
	Get(ctx context.Context, orderID uuid.UUID) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, orderID uuid.UUID) error

	AcquireTableLock(ctx context.Context, tableID, orderID uuid.UUID) (bool, error)
	ReleaseTableLock(ctx context.Context, tableID uuid.UUID) error
}

type redisSessionCache struct {
	client *redis.Client
	cfg    config.StagingConfig
}

func NewRedisSessionCache(client *redis.Client, cfg config.StagingConfig) SessionCache {
	return &redisSessionCache{client: client, cfg: cfg}
}

func (c *redisSessionCache) Get(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	raw, err := c.client.Get(ctx, c.client.StagedSessionKey(orderID.String()))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, errors.New(errors.CodeNotFound, "session not cached")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "load session")
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "decode session")
	}
	if session.Ledger == nil {
		session.Ledger = NewLedger()
	}
	return &session, nil
}

func (c *redisSessionCache) Put(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode session")
	}
	key := c.client.StagedSessionKey(session.OrderID.String())
	if err := c.client.Set(ctx, key, string(payload), c.cfg.SessionTTL); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "store session")
	}
	return nil
}

func (c *redisSessionCache) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := c.client.Del(ctx, c.client.StagedSessionKey(orderID.String())); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "delete session")
	}
	return nil
}

// AcquireTableLock claims the table for one staged session. The lock value
// records the owning order so operators can trace a stuck table.
func (c *redisSessionCache) AcquireTableLock(ctx context.Context, tableID, orderID uuid.UUID) (bool, error) {
	key := c.client.TableLockKey(tableID.String())
	ok, err := c.client.SetNX(ctx, key, orderID.String(), c.cfg.TableLockTTL)
	if err != nil {
		return false, errors.Wrap(errors.CodeDependency, err, "acquire table lock")
	}
	return ok, nil
}

func (c *redisSessionCache) ReleaseTableLock(ctx context.Context, tableID uuid.UUID) error {
	if err := c.client.Del(ctx, c.client.TableLockKey(tableID.String())); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "release table lock")
	}
	return nil
}
