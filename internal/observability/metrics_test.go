package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsIncSocialOp(t *testing.T) {
	m := NewMetrics()
	m.IncSocialOp("follow", OutcomeOK)
	m.IncSocialOp("follow", OutcomeOK)
	m.IncSocialOp("follow", OutcomeNoop)

	if got := testutil.ToFloat64(m.SocialOps().WithLabelValues("follow", OutcomeOK)); got != 2 {
		t.Fatalf("follow/ok: got %v", got)
	}
	if got := testutil.ToFloat64(m.SocialOps().WithLabelValues("follow", OutcomeNoop)); got != 1 {
		t.Fatalf("follow/noop: got %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.IncSocialOp("follow", OutcomeOK)
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" a=1, b = 2 ,broken,=x,c=")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("ParseHeaders: got %v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("ParseHeaders(\"\"): expected nil")
	}
}
