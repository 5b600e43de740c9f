package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/mailer"
)

const (
	defaultBatchSize      = 50
	defaultMaxConcurrency = 10
	defaultInterBatchWait = time.Second

	maxReportedErrors = 10
)

// DonorSource, MemberSource, and SubscriberSource feed recipient
// resolution. Each store contributes a flat list of addresses;
// deduplication happens here.
type DonorSource interface {
	ListDonorEmails() ([]string, error)
}

type MemberSource interface {
	ListApprovedEmails() ([]string, error)
}

type SubscriberSource interface {
	ListEmails() ([]string, error)
}

type Config struct {
	BatchSize       int
	MaxConcurrency  int
	InterBatchDelay time.Duration
}

// Service resolves a recipient group and fans a campaign out through
// the mailer. Batches run strictly sequentially; sends within a batch
// run concurrently under a bounded worker limit, and a fixed delay
// between batches keeps the provider's rate limits happy.
type Service struct {
	donors      DonorSource
	members     MemberSource
	subscribers SubscriberSource
	sender      mailer.Sender

	batchSize       int
	maxConcurrency  int
	interBatchDelay time.Duration

	logger *slog.Logger
}

func NewService(donors DonorSource, members MemberSource, subscribers SubscriberSource, sender mailer.Sender, cfg Config, logger *slog.Logger) *Service {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	delay := cfg.InterBatchDelay
	if delay <= 0 {
		delay = defaultInterBatchWait
	}

	return &Service{
		donors:          donors,
		members:         members,
		subscribers:     subscribers,
		sender:          sender,
		batchSize:       batchSize,
		maxConcurrency:  maxConcurrency,
		interBatchDelay: delay,
		logger:          logger,
	}
}

// SendCampaign resolves the recipient set and dispatches one message
// per address. An empty resolved set is rejected before any send; a
// failed individual send is recorded and never aborts the campaign.
func (s *Service) SendCampaign(ctx context.Context, req *SendCampaignRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	recipients, err := s.ResolveRecipients(req.RecipientGroup, req.CustomEmails)
	if err != nil {
		return nil, err
	}

	if len(recipients) == 0 {
		s.logger.Warn("campaign rejected, no recipients resolved", "recipient_group", req.RecipientGroup)
		return nil, errors.ErrNoRecipients
	}

	s.logger.Info("dispatching campaign",
		"subject", req.Subject,
		"recipient_group", req.RecipientGroup,
		"total_recipients", len(recipients),
		"batch_size", s.batchSize,
		"max_concurrency", s.maxConcurrency)

	result := &Result{
		Success:         true,
		TotalRecipients: len(recipients),
		Errors:          make([]string, 0, maxReportedErrors),
	}

	for start := 0; start < len(recipients); start += s.batchSize {
		end := start + s.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		s.dispatchBatch(ctx, recipients[start:end], req.Subject, req.HTMLContent, result)

		if end < len(recipients) {
			select {
			case <-time.After(s.interBatchDelay):
			case <-ctx.Done():
				// Count the remainder as failures so the accounting
				// invariant still holds when the caller gives up.
				for _, addr := range recipients[end:] {
					result.FailCount++
					s.recordError(result, addr, ctx.Err())
				}
				s.logger.Warn("campaign cancelled between batches",
					"sent", end,
					"remaining", len(recipients)-end)
				return result, nil
			}
		}
	}

	s.logger.Info("campaign dispatch finished",
		"total_recipients", result.TotalRecipients,
		"success_count", result.SuccessCount,
		"fail_count", result.FailCount)

	return result, nil
}

// dispatchBatch sends one batch concurrently and waits for every send
// to settle before returning.
func (s *Service) dispatchBatch(ctx context.Context, batch []string, subject, htmlContent string, result *Result) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.maxConcurrency)
	)

	for _, addr := range batch {
		wg.Add(1)
		sem <- struct{}{}

		go func(addr string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.sender.Send(ctx, addr, subject, htmlContent)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.FailCount++
				s.recordError(result, addr, err)
				return
			}
			result.SuccessCount++
		}(addr)
	}

	wg.Wait()
}

func (s *Service) recordError(result *Result, addr string, err error) {
	s.logger.Error("campaign send failed", "recipient", addr, "error", err)
	if len(result.Errors) < maxReportedErrors {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", addr, err))
	}
}

// ResolveRecipients turns a group selector into a deduplicated, sorted
// address list. Custom entries may themselves be comma-separated; they
// are split, trimmed, and empties dropped.
func (s *Service) ResolveRecipients(group string, customEmails []string) ([]string, error) {
	seen := make(map[string]struct{})

	add := func(emails []string) {
		for _, e := range emails {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			seen[strings.ToLower(e)] = struct{}{}
		}
	}

	if group == GroupCustom {
		for _, entry := range customEmails {
			add(strings.Split(entry, ","))
		}
	}

	if group == GroupNewsletter || group == GroupAll {
		emails, err := s.subscribers.ListEmails()
		if err != nil {
			return nil, errors.NewInternalError("failed to load newsletter recipients", err)
		}
		add(emails)
	}

	if group == GroupMembers || group == GroupAll {
		emails, err := s.members.ListApprovedEmails()
		if err != nil {
			return nil, errors.NewInternalError("failed to load member recipients", err)
		}
		add(emails)
	}

	if group == GroupDonors || group == GroupAll {
		emails, err := s.donors.ListDonorEmails()
		if err != nil {
			return nil, errors.NewInternalError("failed to load donor recipients", err)
		}
		add(emails)
	}

	recipients := make([]string, 0, len(seen))
	for e := range seen {
		recipients = append(recipients, e)
	}
	sort.Strings(recipients)

	return recipients, nil
}
