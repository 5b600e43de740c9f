package rest_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Transport Suite")
}

var _ = Describe("OpenAPI Document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should document the webhook and campaign endpoints", func() {
		for _, path := range []string{
			"/donations",
			"/donations/{id}",
			"/payments/webhook",
			"/newsletter/subscribe",
			"/members",
			"/admin/members/{id}/status",
			"/admin/campaigns",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should require a bearer token on admin routes", func() {
		campaigns := doc.Paths.Find("/admin/campaigns")
		Expect(campaigns).NotTo(BeNil())
		Expect(campaigns.Post.Security).NotTo(BeNil())
	})
})
