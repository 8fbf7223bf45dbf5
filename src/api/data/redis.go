package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ticketPrefix = "ticket:"
	streamEvents = "participa.proposals"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// SetTicket stores the identity claims handed over by the SSO gateway under
// a one-time login ticket.
func SetTicket(ctx context.Context, rdb *redis.Client, ticket, claims string) error {
	return rdb.Set(ctx, ticketPrefix+ticket, claims, 5*time.Minute).Err()
}

// GetDelTicket redeems a login ticket. Redemption is destructive so a ticket
// can only be used once.
func GetDelTicket(ctx context.Context, rdb *redis.Client, ticket string) (string, error) {
	return rdb.GetDel(ctx, ticketPrefix+ticket).Result()
}

// PublishProposalEvent appends a lifecycle event (published, rejected) to the
// proposal event stream for downstream consumers.
func PublishProposalEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}
