//go:build !integration

package redis

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"
)

// fakeClient is an in-memory stand-in for the commands RedisClient exposes.
type fakeClient struct {
	mu      sync.Mutex
	counts  map[string]int64
	lists   map[string][]string
	hashes  map[string]map[string]string
	expires map[string]time.Duration
	failErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		counts:  map[string]int64{},
		lists:   map[string][]string{},
		hashes:  map[string]map[string]string{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeClient) Ping(context.Context) error { return f.failErr }

func (f *fakeClient) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeClient) Expire(_ context.Context, key string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = d
	return f.failErr
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.counts, k)
		delete(f.lists, k)
		delete(f.hashes, k)
	}
	return f.failErr
}

func (f *fakeClient) RPush(_ context.Context, key string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	for _, v := range values {
		f.lists[key] = append(f.lists[key], fmt.Sprintf("%s", v))
	}
	return nil
}

func (f *fakeClient) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...), f.failErr
}

func (f *fakeClient) HSet(_ context.Context, key, field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[key] == nil {
		f.hashes[key] = map[string]string{}
	}
	f.hashes[key][field] = fmt.Sprintf("%s", value)
	return f.failErr
}

func (f *fakeClient) HGet(_ context.Context, key, field string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hashes[key][field], f.failErr
}

func (f *fakeClient) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	collect := func(k string) {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	for k := range f.counts {
		collect(k)
	}
	for k := range f.lists {
		collect(k)
	}
	for k := range f.hashes {
		collect(k)
	}
	return out, f.failErr
}

func (f *fakeClient) Close() error { return nil }
