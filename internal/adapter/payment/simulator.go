// Package payment provides simulated payment processors. Each call waits a
// fixed delay and approves with a configured probability.
package payment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/payment"
	"recharge-service/pkg/logger"
)

// Simulator implements domain.Processor without moving real money.
type Simulator struct {
	name        string
	successRate float64
	delay       time.Duration
	log         *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator creates a simulator that approves successRate of calls
// (0..1) after waiting delay.
func NewSimulator(name string, successRate float64, delay time.Duration, log *zap.Logger) *Simulator {
	return &Simulator{
		name:        name,
		successRate: successRate,
		delay:       delay,
		log:         log,
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSeed makes the outcome sequence reproducible.
func (s *Simulator) WithSeed(seed uint64) *Simulator {
	s.mu.Lock()
	s.rnd = rand.New(rand.NewPCG(seed, seed))
	s.mu.Unlock()
	return s
}

// Process waits for the configured delay and decides the outcome. It returns
// ctx.Err() if ctx ends first.
func (s *Simulator) Process(ctx context.Context, reference string, amount int64) (domain.Outcome, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Outcome{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	s.mu.Lock()
	roll := s.rnd.Float64()
	s.mu.Unlock()

	out := domain.Outcome{
		Approved:   roll < s.successRate,
		ProviderID: "SIM-" + uuid.NewString(),
	}
	if !out.Approved {
		out.Reason = s.name + " declined the payment"
	}

	logger.WithContext(ctx, s.log).Info("simulated payment processed",
		zap.String("processor", s.name),
		zap.String("reference", reference),
		zap.Int64("amount", amount),
		zap.Bool("approved", out.Approved),
	)
	return out, nil
}
