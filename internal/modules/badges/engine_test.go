package badges

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

func newTestEngine(t *testing.T, earned ...*gamification.EarnedBadge) (*Engine, *NotificationQueue) {
	t.Helper()
	q := NewNotificationQueue(8, DropOldest)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(mustCatalog(t), logger.NewNop(), uuid.New(), earned, WithQueue(q), WithClock(func() time.Time { return fixed }))
	return e, q
}

func ids(badges []*gamification.EarnedBadge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.BadgeID)
	}
	return out
}

func TestEngine_CanEarnReflectsEarnedSet(t *testing.T) {
	seed := &gamification.EarnedBadge{BadgeID: "questionador", XP: 50}
	e, _ := newTestEngine(t, seed)
	if e.CanEarn("questionador") {
		t.Fatalf("seeded badge must not be earnable")
	}
	if !e.CanEarn("primeiro_passo") {
		t.Fatalf("unearned badge must be earnable")
	}
}

func TestEngine_GrantIsIdempotent(t *testing.T) {
	e, q := newTestEngine(t)
	b, ok := e.Grant("criador")
	if !ok || b == nil || b.XP != 100 || b.Name != "Criador" {
		t.Fatalf("grant=%+v ok=%v", b, ok)
	}
	if !b.EarnedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("earnedAt=%v", b.EarnedAt)
	}
	for i := 0; i < 3; i++ {
		if _, ok := e.Grant("criador"); ok {
			t.Fatalf("second grant must be a no-op")
		}
		if e.CanEarn("criador") {
			t.Fatalf("CanEarn must stay false after grant")
		}
	}
	if len(e.Earned()) != 1 {
		t.Fatalf("earned=%d want 1", len(e.Earned()))
	}
	if q.Len() != 1 {
		t.Fatalf("notifications=%d want 1", q.Len())
	}
}

func TestEngine_GrantUnknownBadgeIsNoop(t *testing.T) {
	e, q := newTestEngine(t)
	if _, ok := e.Grant("not_a_badge"); ok {
		t.Fatalf("unknown badge must not be granted")
	}
	if len(e.Earned()) != 0 || q.Len() != 0 {
		t.Fatalf("unknown grant changed state")
	}
}

func TestEngine_ThresholdAnalista(t *testing.T) {
	e, _ := newTestEngine(t)
	ev, _ := Decode("questions_answered_5", Context{QuestionsAnswered: 4})
	if got := e.CheckTrigger(ev); len(got) != 0 {
		t.Fatalf("4 answers granted %v", ids(got))
	}
	if !e.CanEarn("analista") {
		t.Fatalf("analista granted below threshold")
	}
	ev, _ = Decode("questions_answered_5", Context{QuestionsAnswered: 5})
	got := e.CheckTrigger(ev)
	if len(got) != 1 || got[0].BadgeID != "analista" {
		t.Fatalf("5 answers granted %v", ids(got))
	}
	if again := e.CheckTrigger(ev); len(again) != 0 {
		t.Fatalf("analista granted twice")
	}
}

func TestEngine_SequentialEngageTriggers(t *testing.T) {
	e, q := newTestEngine(t)
	var got []string
	for _, name := range []string{"big_idea_created", "essential_question_created", "challenge_defined"} {
		ev, ok := Decode(name, Context{})
		if !ok {
			t.Fatalf("Decode(%s) failed", name)
		}
		got = append(got, ids(e.CheckTrigger(ev))...)
	}
	want := []string{"primeiro_passo", "questionador", "desafiador"}
	if len(got) != len(want) {
		t.Fatalf("granted=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("granted=%v want %v", got, want)
		}
	}
	if st := e.Stats(); st.TotalXP != 175 || st.EarnedCount != 3 {
		t.Fatalf("stats=%+v want 175 xp", st)
	}
	if q.Len() != 3 {
		t.Fatalf("notifications=%d want 3", q.Len())
	}
}

func TestEngine_EngageCompletedRequiresChallenge(t *testing.T) {
	e, _ := newTestEngine(t)
	if got := e.CheckTrigger(EngageCompleted{HasBigIdea: true, HasEssentialQuestion: true}); len(got) != 0 {
		t.Fatalf("visionario granted without challenge: %v", ids(got))
	}
	got := e.CheckTrigger(EngageCompleted{HasBigIdea: true, HasEssentialQuestion: true, HasChallenge: true})
	if len(got) != 1 || got[0].BadgeID != "visionario" {
		t.Fatalf("granted=%v", ids(got))
	}
}

func TestEngine_CycleCompletedNeedsAllPhases(t *testing.T) {
	e, _ := newTestEngine(t)
	ev, _ := Decode("cbl_cycle_completed", Context{EngageCompleted: true, InvestigateCompleted: true})
	if got := e.CheckTrigger(ev); len(got) != 0 {
		t.Fatalf("mestre_cbl granted early: %v", ids(got))
	}
	ev, _ = Decode("cbl_cycle_completed", Context{EngageCompleted: true, InvestigateCompleted: true, ActCompleted: true})
	if got := e.CheckTrigger(ev); len(got) != 1 || got[0].BadgeID != "mestre_cbl" {
		t.Fatalf("granted=%v", ids(got))
	}
}

func TestEngine_UnknownTriggerIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	ev, ok := Decode("moon_landing", Context{QuestionsAnswered: 99})
	if ok || ev != nil {
		t.Fatalf("unknown trigger decoded to %v", ev)
	}
	if got := e.CheckTrigger(ev); got != nil {
		t.Fatalf("nil event granted %v", ids(got))
	}
}

func TestEngine_ResourceThresholds(t *testing.T) {
	cases := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{1, []string{"coletor"}},
		{3, []string{"coletor", "bibliotecario"}},
	}
	for _, tc := range cases {
		e, _ := newTestEngine(t)
		got := ids(e.Evaluate(NewCount(TriggerResourcesAdded, tc.n), NewCount(TriggerMultipleResourcesCollected, tc.n)))
		if len(got) != len(tc.want) {
			t.Fatalf("n=%d granted=%v want %v", tc.n, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("n=%d granted=%v want %v", tc.n, got, tc.want)
			}
		}
	}
}

func TestStats(t *testing.T) {
	c := mustCatalog(t)
	cases := []struct {
		xp       []int
		total    int
		level    int
		next     int
		progress int
	}{
		{nil, 0, 1, 200, 0},
		{[]int{50, 150}, 200, 2, 200, 13},
		{[]int{500, 200, 75}, 775, 4, 25, 20},
	}
	for _, tc := range cases {
		var earned []*gamification.EarnedBadge
		for i, xp := range tc.xp {
			earned = append(earned, &gamification.EarnedBadge{BadgeID: string(rune('a' + i)), XP: xp})
		}
		st := ComputeStats(earned, c)
		if st.TotalXP != tc.total || st.Level != tc.level || st.XPForNextLevel != tc.next || st.ProgressPercentage != tc.progress {
			t.Fatalf("xp=%v stats=%+v", tc.xp, st)
		}
	}
}
