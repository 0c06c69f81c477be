package gategin

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/enforce"
	"github.com/open-rails/gatekit/entitlement"
	memoryentitlement "github.com/open-rails/gatekit/entitlement/memory"
	memoryquota "github.com/open-rails/gatekit/quota/memory"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testRouter(t *testing.T, total int) (*gin.Engine, *Enforcer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := quietLogger()
	engine := enforce.NewEngine(enforce.EngineConfig{
		Resolver: entitlement.NewResolver(entitlement.ResolverConfig{Store: memoryentitlement.New(), Logger: log}),
		Quota:    enforce.NewQuotaService(memoryquota.New(total), time.Second, log),
		Logger:   log,
	})
	return gin.New(), NewEnforcer(engine, total)
}

func asUser(user uuid.UUID, premium bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetClaims(c, Claims{UserID: user, Premium: premium})
	}
}

func TestMeteredRouteHeadersAndExhaustion(t *testing.T) {
	r, e := testRouter(t, 2)
	user := uuid.New()
	r.GET("/search", asUser(user, false), e.Middleware(MeteredPolicy()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for _, wantRemaining := range []string{"1", "0"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("X-Quota-Remaining"); got != wantRemaining {
			t.Fatalf("expected remaining header %s, got %q", wantRemaining, got)
		}
		if got := w.Header().Get("X-Quota-Limit"); got != "2" {
			t.Fatalf("expected limit header 2, got %q", got)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on exhaustion, got %d", w.Code)
	}
}

func TestUnauthenticatedGets401(t *testing.T) {
	r, e := testRouter(t, 5)
	r.GET("/search", e.Middleware(MeteredPolicy()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPremiumOnlyGets403ForFree(t *testing.T) {
	r, e := testRouter(t, 5)
	r.GET("/ai", asUser(uuid.New(), false), e.Middleware(PremiumPolicy()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestPremiumClaimBypassesQuota(t *testing.T) {
	r, e := testRouter(t, 1)
	user := uuid.New()
	r.GET("/ai", asUser(user, true), e.Middleware(PremiumPolicy()), func(c *gin.Context) {
		d, ok := CurrentDecision(c)
		if !ok || d.Reason != enforce.ReasonBypassed {
			t.Errorf("expected bypass decision in context, got %+v", d)
		}
		c.Status(http.StatusOK)
	})

	// More requests than the free budget; premium never consumes it.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if w.Header().Get("X-Quota-Remaining") != "" {
			t.Fatal("premium responses should not carry quota headers")
		}
	}
}

func TestPublicPolicySkipsClaims(t *testing.T) {
	r, e := testRouter(t, 5)
	r.GET("/health", e.Middleware(PublicPolicy()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
