package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "quickstay/internal/adapters/redis"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	type payload struct {
		TotalBookings int   `json:"totalBookings"`
		TotalRevenue  int64 `json:"totalRevenue"`
	}

	var out payload
	if ok, err := cache.Get(ctx, "dashboard:1", &out); ok || err != nil {
		t.Fatalf("expected miss on empty cache, ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "dashboard:1", payload{TotalBookings: 3, TotalRevenue: 90000}, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err := cache.Get(ctx, "dashboard:1", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.TotalBookings != 3 || out.TotalRevenue != 90000 {
		t.Fatalf("unexpected payload: %+v", out)
	}

	if err := cache.Del(ctx, "dashboard:1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := cache.Get(ctx, "dashboard:1", &out); ok {
		t.Fatal("expected miss after delete")
	}
}
