package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "abc")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int=%d want 7", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", " 42 ")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("Int=%d want 42", got)
	}
}

func TestSecondsAcceptsIntegersAndDurations(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_TTL", "90")
	if got := Seconds("ENVUTIL_TEST_TTL", time.Minute); got != 90*time.Second {
		t.Fatalf("Seconds=%s want 90s", got)
	}
	t.Setenv("ENVUTIL_TEST_TTL", "2h")
	if got := Seconds("ENVUTIL_TEST_TTL", time.Minute); got != 2*time.Hour {
		t.Fatalf("Seconds=%s want 2h", got)
	}
	t.Setenv("ENVUTIL_TEST_TTL", "-5")
	if got := Seconds("ENVUTIL_TEST_TTL", time.Minute); got != time.Minute {
		t.Fatalf("Seconds=%s want default", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	t.Setenv("ENVUTIL_TEST_LIST", "a, ,b,")
	got := List("ENVUTIL_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List=%v", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.25")
	if got := Float("ENVUTIL_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float=%v want 0.25", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "quarter")
	if got := Float("ENVUTIL_TEST_FLOAT", 1); got != 1 {
		t.Fatalf("Float=%v want default", got)
	}
}
