package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Well-known settings keys.
const (
	SettingCurrentUser = "current_user_id"
	SettingToken       = "token"
	SettingRemoteUser  = "remote_user_id"
	SettingRemoteToken = "remote_token"
)

// SettingsRepo is a small key-value table for client-side state such as
// the signed-in user.
type SettingsRepo struct {
	q querier
}

// Get returns the value for key and whether it was set.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	sel := builder.Select("value").From(builder.Table("settings")).Where(entsql.EQ("key", key))
	var v string
	err := queryRow(ctx, r.q, sel).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	ins := builder.Insert("settings").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, r.q, ins); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepo) Delete(ctx context.Context, keys ...string) error {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	del := builder.Delete("settings").Where(entsql.In("key", args...))
	if _, err := exec(ctx, r.q, del); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}
