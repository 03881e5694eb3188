package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCheckin(t *testing.T) {
	// Reset the counter before test
	CheckinsTotal.Reset()

	RecordCheckin(OutcomeNewVisit)
	RecordCheckin(OutcomeNewVisit)
	RecordCheckin(OutcomeTooFar)

	count := testutil.ToFloat64(CheckinsTotal.WithLabelValues(OutcomeNewVisit))
	if count != 2 {
		t.Errorf("Expected new_visit count = 2, got %f", count)
	}

	count = testutil.ToFloat64(CheckinsTotal.WithLabelValues(OutcomeTooFar))
	if count != 1 {
		t.Errorf("Expected too_far count = 1, got %f", count)
	}
}

func TestRecordAchievementUnlocked(t *testing.T) {
	AchievementsUnlockedTotal.Reset()

	RecordAchievementUnlocked("Novice Explorer")

	count := testutil.ToFloat64(AchievementsUnlockedTotal.WithLabelValues("Novice Explorer"))
	if count != 1 {
		t.Errorf("Expected count = 1, got %f", count)
	}
}

func TestSetAchievementHolders(t *testing.T) {
	AchievementHolders.Reset()

	SetAchievementHolders("Keen Explorer", 3)
	SetAchievementHolders("Keen Explorer", 5)

	value := testutil.ToFloat64(AchievementHolders.WithLabelValues("Keen Explorer"))
	if value != 5 {
		t.Errorf("Expected holders = 5, got %f", value)
	}
}

func TestRecordAuthAttempt(t *testing.T) {
	AuthAttemptsTotal.Reset()

	RecordAuthAttempt("login", "failure")
	RecordAuthAttempt("login", "success")
	RecordAuthAttempt("login", "failure")

	count := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("login", "failure"))
	if count != 2 {
		t.Errorf("Expected login failure count = 2, got %f", count)
	}
}

func TestHistograms(t *testing.T) {
	ObserveCheckinDistance(120.5)
	ObserveCheckinDuration(0.004)
	ObserveHTTPRequest("POST", "/checkin", "200", 0.01)
	RecordCacheLookup("hit")
	SetReconcileLastRun()

	if n := testutil.CollectAndCount(HTTPRequestDurationSeconds); n < 1 {
		t.Errorf("Expected at least one HTTP latency series, got %d", n)
	}
	if n := testutil.CollectAndCount(CheckinDistanceMeters); n != 1 {
		t.Errorf("Expected one distance histogram, got %d", n)
	}
}
