package learning

import (
	"errors"
	"testing"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

func TestPlanTransitions(t *testing.T) {
	legal := [][2]PlanStatus{
		{PlanCreatingOutline, PlanCreatingModules},
		{PlanCreatingModules, PlanCreatingModules},
		{PlanCreatingModules, PlanCreated},
		{PlanCreated, PlanCompleted},
		{PlanCompleted, PlanCreated},
	}
	for _, tr := range legal {
		if err := tr[0].Transition(tr[1]); err != nil {
			t.Fatalf("%s -> %s: %v", tr[0], tr[1], err)
		}
	}
	illegal := [][2]PlanStatus{
		{PlanCreated, PlanCreatingModules},
		{PlanCreatingOutline, PlanCreated},
		{PlanCompleted, PlanCreatingOutline},
		{PlanCreatingOutline, PlanCompleted},
	}
	for _, tr := range illegal {
		err := tr[0].Transition(tr[1])
		if !errors.Is(err, perrors.ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tr[0], tr[1], err)
		}
	}
}

func TestModuleTransitions(t *testing.T) {
	if !ModuleCreatingOutline.CanTransition(ModuleCreatingContents) {
		t.Fatalf("outline -> contents should be legal")
	}
	if ModuleCreatingContents.CanTransition(ModuleCreatingOutline) {
		t.Fatalf("contents -> outline must not be legal")
	}
	if ModuleCreatingContents.CanTransition(ModuleCompleted) {
		t.Fatalf("completing a module still generating must not be legal")
	}
	if !ModuleCompleted.CanTransition(ModuleCreated) {
		t.Fatalf("uncompleting should be legal")
	}
}

func TestContentTypeFallback(t *testing.T) {
	if ParseContentType("video") != ContentTypeVideo {
		t.Fatalf("video not parsed")
	}
	if ParseContentType("") != ContentTypeText || ParseContentType("audio") != ContentTypeText {
		t.Fatalf("unknown types should fall back to text")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(Module{}, []Content{{Status: ContentCompleted}, {Status: ContentCreated}, {Status: ContentCompleted}, {Status: ContentCreated}})
	if s.ContentsCount != 4 || s.Progress != 0.5 {
		t.Fatalf("Summarize: %+v", s)
	}
	if Summarize(Module{}, nil).Progress != 0 {
		t.Fatalf("empty module progress should be 0")
	}
}
