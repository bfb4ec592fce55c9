package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(TransitionCount.WithLabelValues("milestone.submit", "ok"))
	RecordTransition("milestone.submit", "ok")
	if got := testutil.ToFloat64(TransitionCount.WithLabelValues("milestone.submit", "ok")); got != before+1 {
		t.Fatalf("TransitionCount: want=%v got=%v", before+1, got)
	}

	RecordEscrowMovement("USD", "held", 50000)
	if got := testutil.ToFloat64(EscrowAmount.WithLabelValues("USD", "held")); got < 50000 {
		t.Fatalf("EscrowAmount: want>=50000 got=%v", got)
	}

	RecordProcessorCall("release", "ok", 25*time.Millisecond)
	if n := testutil.CollectAndCount(ProcessorCallLatency); n == 0 {
		t.Fatalf("ProcessorCallLatency: no series collected")
	}
}
