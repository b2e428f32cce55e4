package redisconnect

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the Redis target. URL wins over the split fields.
type Options struct {
	URL      string // redis:// or rediss://
	Addr     string // host:port
	User     string
	Password string
	TLS      bool // for Addr only; rediss:// URLs always use TLS
}

func (o Options) Configured() bool { return o.URL != "" || o.Addr != "" }

func clientOptions(o Options) (*redis.Options, error) {
	if o.URL != "" {
		opt, err := redis.ParseURL(o.URL) // e.g. rediss://default:<token>@host:port
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if opt.TLSConfig != nil {
			opt.TLSConfig.MinVersion = tls.VersionTLS12
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return opt, nil
	}
	if o.Addr == "" {
		return nil, errors.New("missing Redis config: set REDIS_URL or REDIS_ADDR")
	}
	opt := &redis.Options{
		Addr:         o.Addr,
		Username:     o.User,
		Password:     o.Password,
		DB:           0,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if o.TLS {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}

// Connect builds a client and fails fast when Redis is unreachable.
func Connect(ctx context.Context, o Options) (*redis.Client, error) {
	opt, err := clientOptions(o)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}
