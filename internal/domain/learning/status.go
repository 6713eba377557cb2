package learning

import (
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

type PlanStatus string

const (
	PlanCreatingOutline PlanStatus = "creating_outline"
	PlanCreatingModules PlanStatus = "creating_modules"
	PlanCreated         PlanStatus = "created"
	PlanCompleted       PlanStatus = "completed"
)

var planTransitions = map[PlanStatus][]PlanStatus{
	PlanCreatingOutline: {PlanCreatingModules},
	PlanCreatingModules: {PlanCreatingModules, PlanCreated},
	PlanCreated:         {PlanCompleted},
	PlanCompleted:       {PlanCreated},
}

func (s PlanStatus) CanTransition(to PlanStatus) bool {
	return contains(planTransitions[s], to)
}

// Transition returns ErrInvalidTransition when to is not reachable from s.
func (s PlanStatus) Transition(to PlanStatus) error {
	if !s.CanTransition(to) {
		return perrors.InvalidTransition("plan", string(s), string(to))
	}
	return nil
}

type ModuleStatus string

const (
	ModuleCreatingOutline  ModuleStatus = "creating_outline"
	ModuleCreatingContents ModuleStatus = "creating_contents"
	ModuleCreated          ModuleStatus = "created"
	ModuleCompleted        ModuleStatus = "completed"
)

var moduleTransitions = map[ModuleStatus][]ModuleStatus{
	ModuleCreatingOutline:  {ModuleCreatingContents},
	ModuleCreatingContents: {ModuleCreatingContents, ModuleCreated},
	ModuleCreated:          {ModuleCompleted},
	ModuleCompleted:        {ModuleCreated},
}

func (s ModuleStatus) CanTransition(to ModuleStatus) bool {
	return contains(moduleTransitions[s], to)
}

func (s ModuleStatus) Transition(to ModuleStatus) error {
	if !s.CanTransition(to) {
		return perrors.InvalidTransition("module", string(s), string(to))
	}
	return nil
}

type ContentStatus string

const (
	ContentCreated   ContentStatus = "created"
	ContentCompleted ContentStatus = "completed"
)

func (s ContentStatus) CanTransition(to ContentStatus) bool {
	switch s {
	case ContentCreated:
		return to == ContentCompleted
	case ContentCompleted:
		return to == ContentCreated
	default:
		return false
	}
}

func (s ContentStatus) Transition(to ContentStatus) error {
	if !s.CanTransition(to) {
		return perrors.InvalidTransition("content", string(s), string(to))
	}
	return nil
}

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// ParseContentType falls back to text for anything unrecognized.
func ParseContentType(s string) ContentType {
	switch ContentType(s) {
	case ContentTypeImage, ContentTypeVideo:
		return ContentType(s)
	default:
		return ContentTypeText
	}
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
