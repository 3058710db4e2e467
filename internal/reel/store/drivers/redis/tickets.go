// Package redis keeps one-time video tickets in Redis for deployments that
// run several API instances against a shared ticket store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/idx"
)

const defaultPrefix = "reel"

const (
	fieldID        = "id"
	fieldSessionID = "session_id"
	fieldViewerID  = "viewer_id"
	fieldLibraryID = "library_id"
	fieldVideoID   = "video_id"
	fieldUsed      = "used"
	fieldUsedAt    = "used_at"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
)

// Key layout, all under the configured prefix:
//
//	{p}:ticket:{hash}      hash with the ticket fields
//	{p}:ticket-id:{id}     string holding the ticket hash
//	{p}:session:{sid}      zset of hashes scored by created_at ms
//	{p}:ticket-expiry      zset of hashes scored by expires_at ms
//
// Scripts derive keys from the prefix, so this layout is single-node only.

// consumeScript performs the used=false -> true flip server side and replies
// with the updated fields, or an empty list when the ticket cannot be spent.
// Redis runs scripts one at a time, so a concurrent delete can never land
// between the flip and the read.
var consumeScript = red.NewScript(`
local k = KEYS[1]
if redis.call('EXISTS', k) == 0 then return {} end
if redis.call('HGET', k, 'used') == '1' then return {} end
local exp = tonumber(redis.call('HGET', k, 'expires_at'))
if exp == nil or exp <= tonumber(ARGV[1]) then return {} end
redis.call('HSET', k, 'used', '1', 'used_at', ARGV[1])
return redis.call('HGETALL', k)
`)

// removeScript deletes tickets by hash together with their index entries
// and returns how many ticket records existed.
var removeScript = red.NewScript(`
local p = ARGV[1]
local n = 0
for i = 2, #ARGV do
  local h = ARGV[i]
  local tk = p .. ':ticket:' .. h
  local fields = redis.call('HMGET', tk, 'id', 'session_id')
  if fields[1] then redis.call('DEL', p .. ':ticket-id:' .. fields[1]) end
  if fields[2] then redis.call('ZREM', p .. ':session:' .. fields[2], h) end
  redis.call('ZREM', p .. ':ticket-expiry', h)
  n = n + redis.call('DEL', tk)
end
return n
`)

// TicketsRepository implements store.Tickets on Redis.
type TicketsRepository struct {
	client *red.Client
	prefix string
}

var _ store.Tickets = (*TicketsRepository)(nil)

// NewTicketsRepository wraps client. An empty prefix selects "reel".
func NewTicketsRepository(client *red.Client, keyPrefix string) *TicketsRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &TicketsRepository{client: client, prefix: prefix}
}

func (r *TicketsRepository) ticketKey(hash string) string { return r.prefix + ":ticket:" + hash }
func (r *TicketsRepository) idKey(id idx.ID) string       { return r.prefix + ":ticket-id:" + id.String() }
func (r *TicketsRepository) sessionKey(sid string) string { return r.prefix + ":session:" + sid }
func (r *TicketsRepository) expiryKey() string            { return r.prefix + ":ticket-expiry" }

func (r *TicketsRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	created, err := r.client.HSetNX(ctx, r.ticketKey(t.TokenHash), fieldID, t.ID.String()).Result()
	if err != nil {
		return fmt.Errorf("redis: create ticket: %w", err)
	}
	if !created {
		return store.ErrAlreadyExists
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.ticketKey(t.TokenHash), map[string]any{
		fieldSessionID: t.SessionID,
		fieldViewerID:  t.ViewerID,
		fieldLibraryID: t.Video.LibraryID,
		fieldVideoID:   t.Video.VideoID,
		fieldUsed:      "0",
		fieldExpiresAt: t.ExpiresAt.UnixMilli(),
		fieldCreatedAt: t.CreatedAt.UnixMilli(),
	})
	pipe.Set(ctx, r.idKey(t.ID), t.TokenHash, 0)
	pipe.ZAdd(ctx, r.sessionKey(t.SessionID), red.Z{Score: float64(t.CreatedAt.UnixMilli()), Member: t.TokenHash})
	pipe.ZAdd(ctx, r.expiryKey(), red.Z{Score: float64(t.ExpiresAt.UnixMilli()), Member: t.TokenHash})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: create ticket: %w", err)
	}
	return nil
}

func (r *TicketsRepository) GetTicketByHash(ctx context.Context, hash string) (domain.Ticket, error) {
	fields, err := r.client.HGetAll(ctx, r.ticketKey(hash)).Result()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("redis: get ticket: %w", err)
	}
	return decodeTicket(hash, fields)
}

func (r *TicketsRepository) ConsumeTicket(ctx context.Context, hash string, now time.Time) (domain.Ticket, error) {
	reply, err := consumeScript.Run(ctx, r.client, []string{r.ticketKey(hash)}, now.UnixMilli()).StringSlice()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("redis: consume ticket: %w", err)
	}
	if len(reply) == 0 {
		return domain.Ticket{}, store.ErrConditionFailed
	}

	fields := make(map[string]string, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		fields[reply[i]] = reply[i+1]
	}
	t, err := decodeTicket(hash, fields)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("redis: consume ticket: %w", err)
	}
	return t, nil
}

func (r *TicketsRepository) ListTicketsBySession(ctx context.Context, sessionID string) ([]domain.Ticket, error) {
	hashes, err := r.client.ZRevRange(ctx, r.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list tickets: %w", err)
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*red.MapStringStringCmd, len(hashes))
	for i, h := range hashes {
		cmds[i] = pipe.HGetAll(ctx, r.ticketKey(h))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis: list tickets: %w", err)
	}

	out := make([]domain.Ticket, 0, len(hashes))
	for i, cmd := range cmds {
		t, err := decodeTicket(hashes[i], cmd.Val())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TicketsRepository) DeleteTicket(ctx context.Context, id idx.ID) error {
	hash, err := r.client.Get(ctx, r.idKey(id)).Result()
	if errors.Is(err, red.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis: delete ticket: %w", err)
	}

	n, err := r.remove(ctx, []string{hash})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TicketsRepository) DeleteTicketsBySession(ctx context.Context, sessionID string) (int64, error) {
	hashes, err := r.client.ZRange(ctx, r.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: delete session tickets: %w", err)
	}
	return r.remove(ctx, hashes)
}

func (r *TicketsRepository) DeleteExpiredTickets(ctx context.Context, cutoff time.Time) (int64, error) {
	hashes, err := r.client.ZRangeByScore(ctx, r.expiryKey(), &red.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: delete expired tickets: %w", err)
	}
	return r.remove(ctx, hashes)
}

func (r *TicketsRepository) remove(ctx context.Context, hashes []string) (int64, error) {
	if len(hashes) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(hashes)+1)
	args = append(args, r.prefix)
	for _, h := range hashes {
		args = append(args, h)
	}

	n, err := removeScript.Run(ctx, r.client, nil, args...).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis: remove tickets: %w", err)
	}
	return n, nil
}

func decodeTicket(hash string, f map[string]string) (domain.Ticket, error) {
	if len(f) == 0 || f[fieldID] == "" || f[fieldExpiresAt] == "" {
		return domain.Ticket{}, store.ErrNotFound
	}

	expires, err := strconv.ParseInt(f[fieldExpiresAt], 10, 64)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("redis: ticket %s: bad expires_at: %w", f[fieldID], err)
	}
	created, err := strconv.ParseInt(f[fieldCreatedAt], 10, 64)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("redis: ticket %s: bad created_at: %w", f[fieldID], err)
	}

	t := domain.Ticket{
		ID:        idx.ID(f[fieldID]),
		TokenHash: hash,
		SessionID: f[fieldSessionID],
		ViewerID:  f[fieldViewerID],
		Video:     domain.VideoRef{LibraryID: f[fieldLibraryID], VideoID: f[fieldVideoID]},
		Used:      f[fieldUsed] == "1",
		ExpiresAt: time.UnixMilli(expires).UTC(),
		CreatedAt: time.UnixMilli(created).UTC(),
	}
	if raw := f[fieldUsedAt]; raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			usedAt := time.UnixMilli(ms).UTC()
			t.UsedAt = &usedAt
		}
	}
	return t, nil
}
