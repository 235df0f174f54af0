package results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tarun-kavipurapu/swarm-sim/pkg/logger"
	"tarun-kavipurapu/swarm-sim/pkg/report"
)

const runsKey = "runs"

type RedisStorage struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRedisStorage connects to addr and verifies the connection. A zero ttl
// keeps runs forever.
func NewRedisStorage(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Sugar.Infof("[Results] connected to redis at %s db %d", addr, db)

	return &RedisStorage{
		client: rdb,
		ctx:    ctx,
		ttl:    ttl,
	}, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func runKey(id string) string {
	return fmt.Sprintf("run:%s", id)
}

func (r *RedisStorage) SaveRun(rep *report.Report) error {
	var buf bytes.Buffer
	if err := report.Encode(&buf, rep, report.JSON); err != nil {
		return err
	}

	key := runKey(rep.ID)
	pipe := r.client.Pipeline()

	pipe.HSet(r.ctx, key, map[string]interface{}{
		"created_at": rep.CreatedAt.UnixNano(),
		"seed":       strconv.FormatUint(rep.Seed, 10),
		"peers":      rep.Peers,
		"chunks":     rep.Chunks,
		"rounds":     rep.Totals.Rounds,
		"exchanged":  rep.Totals.ExchangedChunks,
		"report":     buf.String(),
	})
	pipe.ZAdd(r.ctx, runsKey, redis.Z{
		Score:  float64(rep.CreatedAt.Unix()),
		Member: rep.ID,
	})
	if r.ttl > 0 {
		pipe.Expire(r.ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to save run %s: %w", rep.ID, err)
	}
	logger.Sugar.Infof("[Results] saved run %s", rep.ID)
	return nil
}

func (r *RedisStorage) GetRun(id string) (*report.Report, error) {
	data, err := r.client.HGet(r.ctx, runKey(id), "report").Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return report.Decode(bytes.NewBufferString(data), report.JSON)
}

func (r *RedisStorage) ListRuns(limit int) ([]RunInfo, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := r.client.ZRevRange(r.ctx, runsKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	infos := make([]RunInfo, 0, len(ids))
	for _, id := range ids {
		result, err := r.client.HGetAll(r.ctx, runKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", id, err)
		}
		if len(result) == 0 {
			// expired; drop the dangling index entry
			r.client.ZRem(r.ctx, runsKey, id)
			continue
		}

		createdAt, _ := strconv.ParseInt(result["created_at"], 10, 64)
		seed, _ := strconv.ParseUint(result["seed"], 10, 64)
		peers, _ := strconv.Atoi(result["peers"])
		chunks, _ := strconv.Atoi(result["chunks"])
		rounds, _ := strconv.Atoi(result["rounds"])
		exchanged, _ := strconv.Atoi(result["exchanged"])

		infos = append(infos, RunInfo{
			ID:              id,
			CreatedAt:       time.Unix(0, createdAt),
			Seed:            seed,
			Peers:           peers,
			Chunks:          chunks,
			Rounds:          rounds,
			ExchangedChunks: exchanged,
		})
	}
	return infos, nil
}
