package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/repository"
)

var _ repository.MessageRegistry = (*MessageRegistry)(nil)

const registryPrefix = "modreg:"

// MessageRegistry keeps product notifications in lists and user views in
// hashes keyed by chat id, so records survive a restart for ttl.
type MessageRegistry struct {
	client RedisClient
	ttl    time.Duration
}

func NewMessageRegistry(client RedisClient, ttl time.Duration) *MessageRegistry {
	return &MessageRegistry{client: client, ttl: ttl}
}

func productKey(id model.EntityID) string { return registryPrefix + "product:" + id.String() }
func userKey(id model.EntityID) string    { return registryPrefix + "user:" + id.String() }

func (r *MessageRegistry) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	return r.client.Expire(ctx, key, r.ttl)
}

func (r *MessageRegistry) AppendProductMessage(ctx context.Context, productID model.EntityID, ref model.MessageRef) error {
	b, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	key := productKey(productID)
	if err := r.client.RPush(ctx, key, b); err != nil {
		return fmt.Errorf("registry append: %w", err)
	}
	return r.touch(ctx, key)
}

func (r *MessageRegistry) ProductMessages(ctx context.Context, productID model.EntityID) ([]model.MessageRef, error) {
	items, err := r.client.LRange(ctx, productKey(productID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("registry read: %w", err)
	}
	refs := make([]model.MessageRef, 0, len(items))
	for _, it := range items {
		var ref model.MessageRef
		if err := json.Unmarshal([]byte(it), &ref); err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *MessageRegistry) RemoveProduct(ctx context.Context, productID model.EntityID) error {
	return r.client.Del(ctx, productKey(productID))
}

func (r *MessageRegistry) SetUserView(ctx context.Context, userID model.EntityID, ref model.MessageRef) error {
	b, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	key := userKey(userID)
	if err := r.client.HSet(ctx, key, strconv.FormatInt(ref.ChatID, 10), b); err != nil {
		return fmt.Errorf("registry set view: %w", err)
	}
	return r.touch(ctx, key)
}

func (r *MessageRegistry) UserView(ctx context.Context, userID model.EntityID, chatID int64) (model.MessageRef, bool, error) {
	v, err := r.client.HGet(ctx, userKey(userID), strconv.FormatInt(chatID, 10))
	if err != nil {
		return model.MessageRef{}, false, fmt.Errorf("registry read view: %w", err)
	}
	if v == "" {
		return model.MessageRef{}, false, nil
	}
	var ref model.MessageRef
	if err := json.Unmarshal([]byte(v), &ref); err != nil {
		return model.MessageRef{}, false, nil
	}
	return ref, true, nil
}

func (r *MessageRegistry) RemoveUserView(ctx context.Context, userID model.EntityID) error {
	return r.client.Del(ctx, userKey(userID))
}

func (r *MessageRegistry) Clear(ctx context.Context) error {
	keys, err := r.client.ScanKeys(ctx, registryPrefix+"*")
	if err != nil {
		return err
	}
	return r.client.Del(ctx, keys...)
}
