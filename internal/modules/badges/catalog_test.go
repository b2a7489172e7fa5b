package badges

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
)

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	return c
}

func TestEmbeddedCatalog(t *testing.T) {
	c := mustCatalog(t)
	if c.Size() != 15 {
		t.Fatalf("size=%d want 15", c.Size())
	}
	sum := 0
	for _, def := range c.All() {
		sum += def.XP
		if _, ok := ParseTrigger(def.Trigger); !ok {
			t.Fatalf("%s has unknown trigger %q", def.ID, def.Trigger)
		}
	}
	if c.TotalXP() != sum || sum != 1925 {
		t.Fatalf("TotalXP=%d sum=%d want 1925", c.TotalXP(), sum)
	}
	def, ok := c.Lookup("analista")
	if !ok || def.Threshold != 5 || def.Trigger != "questions_answered_5" {
		t.Fatalf("analista=%+v ok=%v", def, ok)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestCatalogEveryTriggerHasARule(t *testing.T) {
	c := mustCatalog(t)
	for _, tr := range Triggers() {
		if len(c.RulesFor(tr)) == 0 {
			t.Fatalf("trigger %s grants nothing", tr)
		}
	}
	if got := c.RulesFor(TriggerUnknown); len(got) != 0 {
		t.Fatalf("unknown trigger rules=%v", got)
	}
}

func TestCatalogFilter(t *testing.T) {
	c := mustCatalog(t)
	engage := c.Filter(Filter{Category: gamification.CategoryEngage})
	if len(engage) != 4 {
		t.Fatalf("engage badges=%d want 4", len(engage))
	}
	legendary := c.Filter(Filter{Rarity: gamification.RarityLegendary})
	if len(legendary) != 1 || legendary[0].ID != "mestre_cbl" {
		t.Fatalf("legendary=%v", legendary)
	}
	if got := c.Filter(Filter{Category: gamification.CategorySpecial, Rarity: gamification.RarityEpic}); len(got) != 0 {
		t.Fatalf("special+epic=%v", got)
	}
	if got := c.Filter(Filter{}); len(got) != c.Size() {
		t.Fatalf("empty filter=%d want %d", len(got), c.Size())
	}
}

func TestCatalogAllIsACopy(t *testing.T) {
	c := mustCatalog(t)
	all := c.All()
	all[0].XP = 999999
	if def, _ := c.Lookup(all[0].ID); def.XP == 999999 {
		t.Fatalf("catalog mutated through All()")
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":     "badges: []",
		"duplicate": "badges:\n- {id: a, title: A, category: engage, rarity: common, trigger: big_idea_created}\n- {id: a, title: A, category: engage, rarity: common, trigger: big_idea_created}",
		"trigger":   "badges:\n- {id: a, title: A, category: engage, rarity: common, trigger: teleported}",
		"category":  "badges:\n- {id: a, title: A, category: review, rarity: common, trigger: big_idea_created}",
		"rarity":    "badges:\n- {id: a, title: A, category: engage, rarity: mythic, trigger: big_idea_created}",
		"threshold": "badges:\n- {id: a, title: A, category: engage, rarity: common, trigger: big_idea_created, threshold: 3}",
		"nudge":     "badges:\n- {id: a, title: A, category: engage, rarity: common, trigger: big_idea_created}\nnudges:\n- {id: n, phase: review}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadHonorsFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "badges:\n- {id: solo, title: Solo, xp: 10, category: special, rarity: rare, trigger: nudge_obtained}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(catalogEnv, path)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Size() != 1 || c.TotalXP() != 10 {
		t.Fatalf("size=%d xp=%d", c.Size(), c.TotalXP())
	}
}

func TestPickNudge(t *testing.T) {
	c := mustCatalog(t)
	n, ok := c.PickNudge(cbl.PhaseInvestigate, "project-1")
	if !ok || n.Phase != cbl.PhaseInvestigate {
		t.Fatalf("nudge=%+v ok=%v", n, ok)
	}
	again, _ := c.PickNudge(cbl.PhaseInvestigate, "project-1")
	if again.ID != n.ID {
		t.Fatalf("PickNudge not stable: %s vs %s", n.ID, again.ID)
	}
	for _, card := range c.Nudges(cbl.PhaseAct) {
		if !strings.HasPrefix(card.ID, "act_") {
			t.Fatalf("act deck contains %s", card.ID)
		}
	}
}
