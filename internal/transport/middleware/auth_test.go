package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hopebridge/donation-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Middleware Suite")
}

var _ = Describe("RequireRole", func() {
	const signingSecret = "test-secret"

	var (
		handler  http.Handler
		recorder *httptest.ResponseRecorder
		reached  bool
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		reached = false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
		handler = middleware.RequireRole(signingSecret, "admin", logger)(next)
		recorder = httptest.NewRecorder()
	})

	signToken := func(secret, role string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "user-1",
			"role": role,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(secret))
		Expect(err).NotTo(HaveOccurred())
		return signed
	}

	request := func(authHeader string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/campaigns", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		handler.ServeHTTP(recorder, req)
	}

	It("should pass a valid admin token through", func() {
		request("Bearer " + signToken(signingSecret, "admin"))
		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("should respond 401 without a bearer header", func() {
		request("")
		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("should respond 401 for a token signed with the wrong secret", func() {
		request("Bearer " + signToken("other-secret", "admin"))
		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("should respond 403 when the role claim does not match", func() {
		request("Bearer " + signToken(signingSecret, "viewer"))
		Expect(recorder.Code).To(Equal(http.StatusForbidden))
		Expect(reached).To(BeFalse())
	})
})
