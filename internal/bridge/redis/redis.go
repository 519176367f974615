// Package redis is a bridge.Source backed by Redis.
//
// Keys, under a configurable prefix (default "swipedeck"):
//
//	<prefix>:deck       string, JSON array of records (the current deck)
//	<prefix>:deck:live  pub/sub channel, JSON array of records per message
//	<prefix>:decisions  list, one JSON decision per RPUSH
//
// Producers replace the deck with PublishDeck, which writes the key and
// announces the same payload on the channel.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "swipedeck"

// Keys holds the resolved key names.
type Keys struct {
	Deck      string
	Channel   string
	Decisions string
}

// KeysFor derives key names from prefix.
func KeysFor(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{
		Deck:      prefix + ":deck",
		Channel:   prefix + ":deck:live",
		Decisions: prefix + ":decisions",
	}
}

// Source talks to one Redis server.
type Source struct {
	rdb  *goredis.Client
	keys Keys
	log  zerolog.Logger
}

// Options configures Dial.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Logger   zerolog.Logger
}

// Dial connects and pings the server.
func Dial(ctx context.Context, opts Options) (*Source, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Source{
		rdb:  rdb,
		keys: KeysFor(opts.Prefix),
		log:  opts.Logger.With().Str("component", "redis-bridge").Logger(),
	}, nil
}

// Close releases the client.
func (s *Source) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// Keys returns the key names in use.
func (s *Source) Keys() Keys { return s.keys }

// FetchInitial reads the deck key. A missing key is an empty deck.
func (s *Source) FetchInitial(ctx context.Context) ([]record.Record, error) {
	raw, err := s.rdb.Get(ctx, s.keys.Deck).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []record.Record{}, nil
	}
	if err != nil {
		return nil, bridge.NewFetchError(err)
	}
	records, err := DecodeDeck(raw)
	if err != nil {
		return nil, bridge.NewFetchError(err)
	}
	return records, nil
}

// Observe subscribes to the deck channel. Undecodable payloads are reported
// as stream errors and the subscription continues.
func (s *Source) Observe(ctx context.Context) <-chan bridge.Batch {
	out := make(chan bridge.Batch)

	go func() {
		defer close(out)

		emit := func(b bridge.Batch) bool {
			select {
			case out <- b:
				return true
			case <-ctx.Done():
				return false
			}
		}

		sub := s.rdb.Subscribe(ctx, s.keys.Channel)
		defer sub.Close()

		// ensures subscription actually started
		if _, err := sub.Receive(ctx); err != nil {
			if ctx.Err() == nil {
				emit(bridge.Batch{Err: bridge.NewStreamError(fmt.Errorf("redis subscribe: %w", err))})
			}
			return
		}

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				records, err := DecodeDeck([]byte(m.Payload))
				if err != nil {
					s.log.Warn().Err(err).Msg("bad deck payload")
					if !emit(bridge.Batch{Err: bridge.NewStreamError(err)}) {
						return
					}
					continue
				}
				if !emit(bridge.Batch{Records: records}) {
					return
				}
			}
		}
	}()

	return out
}

// Send appends d to the decisions list.
func (s *Source) Send(ctx context.Context, d decision.Decision) error {
	raw, err := EncodeDecision(d)
	if err != nil {
		return bridge.NewSendError(d.RecordID, err)
	}
	if err := s.rdb.RPush(ctx, s.keys.Decisions, raw).Err(); err != nil {
		return bridge.NewSendError(d.RecordID, err)
	}
	return nil
}

// PublishDeck stores records as the current deck and announces them.
func (s *Source) PublishDeck(ctx context.Context, records []record.Record) error {
	raw, err := EncodeDeck(records)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keys.Deck, raw, 0)
	pipe.Publish(ctx, s.keys.Channel, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish deck: %w", err)
	}
	return nil
}

// Decisions reads the decisions list from start to end (inclusive, Redis
// LRANGE semantics).
func (s *Source) Decisions(ctx context.Context, start, end int64) ([]decision.Decision, error) {
	raws, err := s.rdb.LRange(ctx, s.keys.Decisions, start, end).Result()
	if err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}
	out := make([]decision.Decision, 0, len(raws))
	for _, raw := range raws {
		d, err := DecodeDecision([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

var (
	_ bridge.Source = (*Source)(nil)
	_ bridge.Closer = (*Source)(nil)
)
