package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"settlement-service/internal/consumers"
	"settlement-service/internal/services"
)

type Worker struct {
	Processor *consumers.SettlementProcessor
}

func NewWorker(processor *consumers.SettlementProcessor) *Worker {
	return &Worker{
		Processor: processor,
	}
}

func (w *Worker) HandleIssueTokens(ctx context.Context, t *asynq.Task) error {
	var p consumers.SideEffectDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessIssueTokens(p)
}

func (w *Worker) HandleGenerateInvoice(ctx context.Context, t *asynq.Task) error {
	var p consumers.SideEffectDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessGenerateInvoice(p)
}

func (w *Worker) HandleSendConfirmation(ctx context.Context, t *asynq.Task) error {
	var p consumers.SideEffectDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessSendConfirmation(p)
}

func (w *Worker) HandleReleaseCommission(ctx context.Context, t *asynq.Task) error {
	var p consumers.SideEffectDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessReleaseCommission(p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.SettlementProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(services.TypeIssueTokens, worker.HandleIssueTokens)
	mux.HandleFunc(services.TypeGenerateInvoice, worker.HandleGenerateInvoice)
	mux.HandleFunc(services.TypeSendConfirmation, worker.HandleSendConfirmation)
	mux.HandleFunc(services.TypeReleaseCommission, worker.HandleReleaseCommission)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
