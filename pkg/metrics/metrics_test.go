package metrics

import (
	"net/http/httptest"
	"testing"
)

func TestRecordersDoNotPanic(t *testing.T) {
	RecordAssessmentIngested()
	RecordAssessmentExcluded("ingest")
	RecordAssessmentExcluded("normalize")
	RecordCitationResolved("valid")
	RecordCitationResolved("invalid")
	RecordCitationResolved("unknown")
	RecordCitationLatency(0.012)
	RecordFindingClusters(3)
	RecordContestedCategory()
	RecordFalseConfidenceFlag()
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordAssessmentIngested()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
