package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestRedisCache_SetGetDelete(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	c, err := newRedisCache([]string{mr.Addr()})
	assert.NoError(t, err)

	ctx := context.Background()
	type account struct {
		AccountID string `json:"account_id"`
		Code      string `json:"code"`
	}

	in := account{AccountID: "acc_1", Code: "1000"}
	assert.NoError(t, c.Set(ctx, "account:acc_1", in, time.Minute))

	var out account
	assert.NoError(t, c.Get(ctx, "account:acc_1", &out))
	assert.Equal(t, in, out)

	assert.NoError(t, c.Delete(ctx, "account:acc_1"))

	// A miss is not an error; the target is simply left untouched.
	var missed account
	assert.NoError(t, c.Get(ctx, "account:missing", &missed))
	assert.Empty(t, missed.AccountID)
}
