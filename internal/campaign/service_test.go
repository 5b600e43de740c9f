package campaign_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/campaign"
)

func TestCampaignService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Campaign Service Suite")
}

// MockSource serves all three recipient source interfaces
type MockSource struct {
	donorEmails      []string
	memberEmails     []string
	subscriberEmails []string
	shouldFail       bool
	failError        error
}

func (m *MockSource) ListDonorEmails() ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.donorEmails, nil
}

func (m *MockSource) ListApprovedEmails() ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.memberEmails, nil
}

func (m *MockSource) ListEmails() ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.subscriberEmails, nil
}

// MockSender records sends and can fail selectively
type MockSender struct {
	mu         sync.Mutex
	sent       []string
	failFor    map[string]error
	concurrent int
	peak       int
}

func NewMockSender() *MockSender {
	return &MockSender{failFor: make(map[string]error)}
}

func (m *MockSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	m.concurrent++
	if m.concurrent > m.peak {
		m.peak = m.concurrent
	}
	m.mu.Unlock()

	time.Sleep(time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.concurrent--

	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *MockSender) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

var _ = Describe("Campaign Service", func() {
	var (
		source  *MockSource
		sender  *MockSender
		service *campaign.Service
		logger  *slog.Logger
		cfg     campaign.Config
	)

	BeforeEach(func() {
		source = &MockSource{
			donorEmails:      []string{"donor1@mail.com", "donor2@mail.com"},
			memberEmails:     []string{"member1@mail.com"},
			subscriberEmails: []string{"sub1@mail.com", "sub2@mail.com"},
		}
		sender = NewMockSender()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		cfg = campaign.Config{BatchSize: 2, MaxConcurrency: 2, InterBatchDelay: time.Millisecond}
		service = campaign.NewService(source, source, source, sender, cfg, logger)
	})

	newRequest := func(group string, custom ...string) *campaign.SendCampaignRequest {
		return &campaign.SendCampaignRequest{
			Subject:        "Monthly Update",
			HTMLContent:    "<p>Hello</p>",
			RecipientGroup: group,
			CustomEmails:   custom,
		}
	}

	Describe("SendCampaign", func() {
		Context("when every send succeeds", func() {
			It("should reach every resolved recipient exactly once", func() {
				result, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupAll))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.TotalRecipients).To(Equal(5))
				Expect(result.SuccessCount).To(Equal(5))
				Expect(result.FailCount).To(Equal(0))
				Expect(sender.Sent()).To(HaveLen(5))
			})

			It("should keep success and fail counts summing to the total", func() {
				result, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupNewsletter))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.SuccessCount + result.FailCount).To(Equal(result.TotalRecipients))
			})

			It("should never exceed the configured concurrency", func() {
				_, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupAll))
				Expect(err).NotTo(HaveOccurred())
				Expect(sender.peak).To(BeNumerically("<=", cfg.MaxConcurrency))
			})
		})

		Context("when some sends fail", func() {
			BeforeEach(func() {
				sender.failFor["donor1@mail.com"] = errors.New("mailbox full")
				sender.failFor["sub2@mail.com"] = errors.New("bounced")
			})

			It("should keep going and account for every recipient", func() {
				result, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupAll))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.TotalRecipients).To(Equal(5))
				Expect(result.SuccessCount).To(Equal(3))
				Expect(result.FailCount).To(Equal(2))
				Expect(result.SuccessCount + result.FailCount).To(Equal(result.TotalRecipients))
			})

			It("should report error samples", func() {
				result, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupAll))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Errors).To(HaveLen(2))
			})
		})

		Context("when many sends fail", func() {
			It("should cap reported error samples at ten", func() {
				var custom []string
				for _, addr := range []string{
					"f1@mail.com", "f2@mail.com", "f3@mail.com", "f4@mail.com",
					"f5@mail.com", "f6@mail.com", "f7@mail.com", "f8@mail.com",
					"f9@mail.com", "f10@mail.com", "f11@mail.com", "f12@mail.com",
				} {
					sender.failFor[addr] = errors.New("rejected")
					custom = append(custom, addr)
				}

				result, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupCustom, custom...))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.FailCount).To(Equal(12))
				Expect(result.Errors).To(HaveLen(10))
			})
		})

		Context("when no recipients resolve", func() {
			BeforeEach(func() {
				source.donorEmails = nil
				source.memberEmails = nil
				source.subscriberEmails = nil
			})

			It("should reject the campaign before any send", func() {
				_, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupAll))
				Expect(err).To(HaveOccurred())

				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(apperrors.ErrCodeNoRecipients))
				Expect(sender.Sent()).To(BeEmpty())
			})
		})

		Context("when validation fails", func() {
			It("should reject an unknown recipient group", func() {
				_, err := service.SendCampaign(context.Background(), newRequest("everyone"))
				Expect(err).To(HaveOccurred())
			})

			It("should reject a missing subject", func() {
				req := newRequest(campaign.GroupAll)
				req.Subject = ""
				_, err := service.SendCampaign(context.Background(), req)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when a recipient source fails", func() {
			BeforeEach(func() {
				source.shouldFail = true
				source.failError = errors.New("database error")
			})

			It("should return an internal error", func() {
				_, err := service.SendCampaign(context.Background(), newRequest(campaign.GroupDonors))
				Expect(err).To(HaveOccurred())

				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(500))
			})
		})
	})

	Describe("ResolveRecipients", func() {
		It("should deduplicate addresses across sources", func() {
			source.donorEmails = []string{"shared@mail.com", "donor@mail.com"}
			source.memberEmails = []string{"shared@mail.com"}
			source.subscriberEmails = []string{"SHARED@mail.com"}

			recipients, err := service.ResolveRecipients(campaign.GroupAll, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(recipients).To(ConsistOf("shared@mail.com", "donor@mail.com"))
		})

		It("should split comma-joined custom entries and drop empties", func() {
			recipients, err := service.ResolveRecipients(campaign.GroupCustom, []string{
				"a@mail.com, b@mail.com",
				"  c@mail.com  ",
				"",
				" , ",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(recipients).To(ConsistOf("a@mail.com", "b@mail.com", "c@mail.com"))
		})

		It("should only touch the selected source", func() {
			recipients, err := service.ResolveRecipients(campaign.GroupMembers, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(recipients).To(ConsistOf("member1@mail.com"))
		})
	})
})
