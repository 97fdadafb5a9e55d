package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	TaskDeliverNotification = "notification:deliver"
)

/*
This file contains the codes to create tasks and distribute them to the Redis queue.
*/

type TaskDistributor interface {
	DistributeTaskDeliverNotification(ctx context.Context, payload *PayloadDeliverNotification, opts ...asynq.Option) error
}

type RedisTaskDistributor struct {
	client *asynq.Client // client sends tasks to redis queue.
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		client: client,
	}
}
