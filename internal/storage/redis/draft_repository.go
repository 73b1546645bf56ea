// Пакет redis хранит припаркованные продажи в Redis: терминалы одного филиала
// разделяют общий список черновиков без отдельной БД.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	draftKeyPrefix = "pos:draft:"
	draftIndexKey  = "pos:drafts:by_parked_at"
	opTimeout      = 5 * time.Second
)

type draftRepository struct {
	client *redis.Client
}

// NewDraftRepository создаёт Redis-реализацию DraftRepository.
func NewDraftRepository(client *redis.Client) domain.DraftRepository {
	return &draftRepository{client: client}
}

func (r *draftRepository) Put(draft domain.DraftSale) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, draftKey(draft.ID), data, 0)
	pipe.ZAdd(ctx, draftIndexKey, redis.Z{
		Score:  float64(draft.ParkedAt.UnixMilli()),
		Member: draft.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put draft failed: %w", err)
	}

	return nil
}

func (r *draftRepository) List() ([]domain.DraftSale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ids, err := r.client.ZRevRange(ctx, draftIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list draft ids failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = draftKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget drafts failed: %w", err)
	}

	drafts := make([]domain.DraftSale, 0, len(values))
	for i, value := range values {
		// Индекс может пережить значение при падении между командами;
		// такие записи чистятся лениво.
		if value == nil {
			_ = r.client.ZRem(ctx, draftIndexKey, ids[i]).Err()
			continue
		}
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected redis value type for draft %s", ids[i])
		}

		var draft domain.DraftSale
		if err := json.Unmarshal([]byte(raw), &draft); err != nil {
			return nil, fmt.Errorf("unmarshal draft %s failed: %w", ids[i], err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// Take извлекает черновик атомарным GETDEL: из двух конкурентных resume
// значение получает ровно один, второй видит redis.Nil.
func (r *draftRepository) Take(id string) (domain.DraftSale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := r.client.GetDel(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DraftSale{}, domain.ErrDraftNotFound
	}
	if err != nil {
		return domain.DraftSale{}, fmt.Errorf("redis take draft failed: %w", err)
	}
	_ = r.client.ZRem(ctx, draftIndexKey, id).Err()

	var draft domain.DraftSale
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.DraftSale{}, fmt.Errorf("unmarshal taken draft failed: %w", err)
	}

	return draft, nil
}

func (r *draftRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	removed, err := r.client.Del(ctx, draftKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete draft failed: %w", err)
	}
	_ = r.client.ZRem(ctx, draftIndexKey, id).Err()

	if removed == 0 {
		return domain.ErrDraftNotFound
	}

	return nil
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

var _ domain.DraftRepository = (*draftRepository)(nil)
