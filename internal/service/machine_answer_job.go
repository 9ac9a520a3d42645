package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/culturallm/backend/internal/jobs"
	"github.com/culturallm/backend/internal/metrics"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MachineAnswerJob generates the single machine answer of a question in the
// background.
type MachineAnswerJob interface {
	// Schedule starts the job unless one already ran or is running for the question.
	Schedule(questionID uint)
	// Wait blocks until every scheduled job has returned or ctx is done.
	Wait(ctx context.Context) error
}

type machineAnswerJob struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
	llm       LLMService
	guard     jobs.Guard
	timeout   time.Duration
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
}

// jobStoreSlack covers the store round trips around the generation call.
const jobStoreSlack = 30 * time.Second

// NewMachineAnswerJob bounds each job by generationBudget, normally
// GenerationBudget of the generator's settings, plus time for the store.
func NewMachineAnswerJob(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	llm LLMService,
	guard jobs.Guard,
	generationBudget time.Duration,
	m *metrics.Metrics,
) MachineAnswerJob {
	timeout := 2 * time.Minute
	if generationBudget > 0 {
		timeout = generationBudget + jobStoreSlack
	}
	return &machineAnswerJob{
		answers:   answers,
		questions: questions,
		llm:       llm,
		guard:     guard,
		timeout:   timeout,
		metrics:   m,
	}
}

func guardKey(questionID uint) string {
	return fmt.Sprintf("machine-answer:%d", questionID)
}

func (j *machineAnswerJob) Schedule(questionID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)

	claimed, err := j.guard.Claim(ctx, guardKey(questionID))
	if err != nil {
		// Without the guard the existence check still keeps the job idempotent.
		log.Warn().Err(err).Uint("questionID", questionID).Msg("Job guard unavailable, running unguarded")
		claimed = true
	}
	if !claimed {
		cancel()
		j.metrics.MachineAnswerJob("skipped")
		log.Debug().Uint("questionID", questionID).Msg("Machine answer already scheduled")
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer cancel()

		result, err := j.run(ctx, questionID)
		j.metrics.MachineAnswerJob(result)
		if err != nil {
			log.Error().Err(err).Uint("questionID", questionID).Msg("Machine answer job failed")
			if relErr := j.guard.Release(context.Background(), guardKey(questionID)); relErr != nil {
				log.Warn().Err(relErr).Uint("questionID", questionID).Msg("Failed to release job guard")
			}
		}
	}()
}

func (j *machineAnswerJob) run(ctx context.Context, questionID uint) (string, error) {
	exists, err := j.answers.MachineAnswerExists(ctx, questionID)
	if err != nil {
		return "failed", fmt.Errorf("failed to check machine answer: %w", err)
	}
	if exists {
		return "skipped", nil
	}

	question, err := j.questions.FindByID(ctx, questionID)
	if err != nil {
		return "failed", translateDBError(err, "failed to load question %d", questionID)
	}

	text := NormalizeText(j.llm.GenerateAnswer(ctx, question.Text, question.Theme.Name))
	if text == "" {
		text = AnswerFallback
	}

	answer := &model.Answer{QuestionID: questionID, Text: text, IsLLMAnswer: true}
	if err := j.answers.Create(ctx, answer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Info().Uint("questionID", questionID).Msg("Machine answer created concurrently, skipping")
			return "skipped", nil
		}
		return "failed", fmt.Errorf("failed to save machine answer: %w", err)
	}

	log.Info().Uint("questionID", questionID).Uint("answerID", answer.ID).Msg("Machine answer created")
	return "created", nil
}

func (j *machineAnswerJob) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
