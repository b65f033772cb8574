// Package cache tracks which users are currently connected to each note's
// sync channel, backed by Redis.
//
// Liveness is expressed as a logical TTL: each member of a note's sorted set
// carries score=expireAt (Unix seconds). Reads prune expired members first,
// so a crashed client disappears from the collaborator list once its TTL
// lapses even though it never sent a disconnect.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-note-sync/internal/config"
	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PresenceCache tracks live collaborators per note.
type PresenceCache interface {
	AddMember(ctx context.Context, noteID uuid.UUID, userID uuid.UUID, login string, ttl time.Duration) error
	AliveMembers(ctx context.Context, noteID uuid.UUID) ([]PresenceMember, error)
	RemoveMember(ctx context.Context, noteID uuid.UUID, userID uuid.UUID) error
}

// PresenceMember is one live collaborator of a note.
type PresenceMember struct {
	UserID uuid.UUID
	Login  string
}

type redisPresence struct {
	rdb    *redis.Client
	logger *logger.Logger
}

// NewRedisClient opens a Redis connection from the given configuration and
// verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg config.Redis, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisClient").Msg("error connecting redis (ping)")
		return nil, fmt.Errorf("error connecting redis: %w", err)
	}
	log.Info().Str("func", "NewRedisClient").Msg("connected to redis successfully")

	return rdb, nil
}

// NewRedisPresence constructs a Redis-backed [PresenceCache].
func NewRedisPresence(rdb *redis.Client, log *logger.Logger) PresenceCache {
	log.Debug().Msg("creating redis presence cache")
	return &redisPresence{rdb: rdb, logger: log}
}

// AddMember registers (or refreshes) a collaborator on a note. Calling it
// again before the TTL lapses extends the member's logical expiry.
func (p *redisPresence) AddMember(ctx context.Context, noteID uuid.UUID, userID uuid.UUID, login string, ttl time.Duration) error {
	tx := p.rdb.TxPipeline()

	// score = expireAt (Unix seconds) encodes the logical TTL
	expireAt := time.Now().Add(ttl).Unix()
	tx.ZAdd(ctx, noteKey(noteID), redis.Z{Score: float64(expireAt), Member: userID.String()})
	tx.HSet(ctx, namesKey(noteID), userID.String(), login)

	if _, err := tx.Exec(ctx); err != nil {
		p.logger.Err(err).Str("func", "*redisPresence.AddMember").Msg("error adding presence member")
		return fmt.Errorf("error adding presence member: %w", err)
	}

	return nil
}

// pruneExpiredScript drops members whose expireAt has passed, together with
// their name-table entries, in one round trip.
//
// KEYS[1] = noteKey, KEYS[2] = namesKey, ARGV[1] = now (unix seconds).
var pruneExpiredScript = redis.NewScript(`
local expired = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
if #expired > 0 then
	redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
	redis.call("HDEL", KEYS[2], unpack(expired))
end
return #expired
`)

// AliveMembers prunes expired collaborators of the note and returns those
// still within their TTL, with logins resolved from the name table.
func (p *redisPresence) AliveMembers(ctx context.Context, noteID uuid.UUID) ([]PresenceMember, error) {
	now := time.Now().Unix()

	if _, err := pruneExpiredScript.Run(ctx, p.rdb, []string{noteKey(noteID), namesKey(noteID)}, now).Int(); err != nil && !errors.Is(err, redis.Nil) {
		p.logger.Err(err).Str("func", "*redisPresence.AliveMembers").Msg("error pruning expired members")
		return nil, fmt.Errorf("error pruning expired members: %w", err)
	}

	aliveIDs, err := p.rdb.ZRangeByScore(ctx, noteKey(noteID), &redis.ZRangeBy{
		Min: "(" + fmt.Sprint(now),
		Max: "+inf",
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		p.logger.Err(err).Str("func", "*redisPresence.AliveMembers").Msg("error listing alive members")
		return nil, fmt.Errorf("error listing alive members: %w", err)
	}
	if len(aliveIDs) == 0 {
		return nil, nil
	}

	names, err := p.rdb.HMGet(ctx, namesKey(noteID), aliveIDs...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		p.logger.Err(err).Str("func", "*redisPresence.AliveMembers").Msg("error resolving member names")
		return nil, fmt.Errorf("error resolving member names: %w", err)
	}

	members := make([]PresenceMember, 0, len(aliveIDs))
	for i, rawID := range aliveIDs {
		memberID, err := uuid.Parse(rawID)
		if err != nil {
			// a foreign member entry, skip rather than fail the whole read
			p.logger.Warn().Str("func", "*redisPresence.AliveMembers").Str("member", rawID).Msg("skipping unparseable member id")
			continue
		}

		login := ""
		if i < len(names) && names[i] != nil {
			login, _ = names[i].(string)
		}
		members = append(members, PresenceMember{UserID: memberID, Login: login})
	}

	return members, nil
}

// RemoveMember drops a collaborator from a note immediately, without waiting
// for the TTL to lapse. Used on clean disconnects.
func (p *redisPresence) RemoveMember(ctx context.Context, noteID uuid.UUID, userID uuid.UUID) error {
	tx := p.rdb.TxPipeline()
	tx.ZRem(ctx, noteKey(noteID), userID.String())
	tx.HDel(ctx, namesKey(noteID), userID.String())

	if _, err := tx.Exec(ctx); err != nil {
		p.logger.Err(err).Str("func", "*redisPresence.RemoveMember").Msg("error removing presence member")
		return fmt.Errorf("error removing presence member: %w", err)
	}

	return nil
}
