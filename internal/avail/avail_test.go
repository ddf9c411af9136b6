package avail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/store"
	"github.com/iiroan/formwatch/internal/validate"
)

func TestGoDelivers(t *testing.T) {
	call := Go(func(ctx context.Context) validate.Result[string] {
		return validate.Success("alice")
	})

	select {
	case res := <-call.Done():
		assert.True(t, res.Valid)
		assert.Equal(t, "alice", res.Data)
	case <-time.After(time.Second):
		t.Fatal("call never delivered")
	}
}

func TestGoCanceledNeverDelivers(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	call := Go(func(ctx context.Context) validate.Result[string] {
		defer close(finished)
		<-release
		return validate.Success("alice")
	})

	call.Cancel()
	close(release)
	<-finished

	select {
	case res := <-call.Done():
		t.Fatalf("canceled call delivered %+v", res)
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-call.Canceled():
	default:
		t.Fatal("call not marked canceled")
	}
}

func TestCancelDropsBufferedResult(t *testing.T) {
	call := Go(func(ctx context.Context) validate.Result[string] {
		return validate.Success("alice")
	})
	require.Eventually(t, func() bool { return len(call.done) == 1 }, time.Second, time.Millisecond)

	call.Cancel()
	call.Cancel()

	select {
	case res := <-call.Done():
		t.Fatalf("canceled call delivered %+v", res)
	default:
	}
}

func TestRandomCheckSync(t *testing.T) {
	r := NewRandom(7)
	seen := map[bool]int{}
	for i := 0; i < 200; i++ {
		res := r.CheckSync(context.Background(), validate.Email, "x@y.com")
		seen[res.Valid]++
		if !res.Valid {
			assert.Equal(t, "Email is already taken", res.Reason)
		}
	}
	assert.NotZero(t, seen[true])
	assert.NotZero(t, seen[false])

	res := r.CheckSync(context.Background(), validate.Phone, "9876543210")
	assert.False(t, res.Valid)
}

func TestRandomCheckAsyncCancel(t *testing.T) {
	r := NewRandom(1)
	r.UsernameLatency = time.Hour
	call := r.CheckAsync(validate.Username, "alice")
	call.Cancel()

	select {
	case <-call.Done():
		t.Fatal("canceled call delivered")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStoreChecker(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Claim(context.Background(), validate.Username, "taken"))
	c := NewStoreChecker(mem, time.Second, nil)

	res := c.CheckSync(context.Background(), validate.Username, "taken")
	assert.False(t, res.Valid)
	assert.Equal(t, "Username is already taken", res.Reason)

	res = c.CheckSync(context.Background(), validate.Username, "free")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)

	res = <-c.CheckAsync(validate.Username, "taken").Done()
	assert.False(t, res.Valid)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/availability/email":
			v := Verdict{Field: "email", Value: r.URL.Query().Get("value"), Available: r.URL.Query().Get("value") != "x@y.com"}
			if !v.Available {
				v.Reason = "Email is already taken"
			}
			_ = json.NewEncoder(w).Encode(v)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPChecker(srv.URL+"/", time.Second, nil)

	res := c.CheckSync(context.Background(), validate.Email, "x@y.com")
	assert.False(t, res.Valid)
	assert.Equal(t, "Email is already taken", res.Reason)

	res = c.CheckSync(context.Background(), validate.Email, "new+1@y.com")
	assert.True(t, res.Valid)

	res = c.CheckSync(context.Background(), validate.Username, "alice")
	assert.False(t, res.Valid)
	assert.Equal(t, "Unable to verify username availability", res.Reason)
}
