// Package auth defines the authorization collaborator the lifecycle queries
// per transition. Identity establishment and fine-grained permission policy
// live outside this service.
package auth

import (
	"context"
	"strings"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

// Action names one authorizable lifecycle operation.
type Action string

const (
	// ActionSubmit submits a draft for review.
	ActionSubmit Action = "ordinance.submit"
	// ActionEdit edits a draft or returned ordinance.
	ActionEdit Action = "ordinance.edit"
	// ActionClaim claims an open review.
	ActionClaim Action = "review.claim"
	// ActionApprove approves a claimed review.
	ActionApprove Action = "review.approve"
	// ActionReject rejects a claimed review.
	ActionReject Action = "review.reject"
	// ActionSign signs an approved ordinance.
	ActionSign Action = "ordinance.sign"
	// ActionPublish numbers and publishes a signed ordinance.
	ActionPublish Action = "ordinance.publish"
	// ActionManageBooks edits sequence book configuration.
	ActionManageBooks Action = "book.manage"
)

// Authorizer answers yes/no authorization questions for lifecycle actions.
type Authorizer interface {
	CanPerform(ctx context.Context, actorID string, action Action, ordinance domain.Ordinance) bool
}

// Role names one entry in the static role table.
type Role string

const (
	// RoleAuthor drafts and submits ordinances.
	RoleAuthor Role = "author"
	// RoleReviewer claims and decides reviews.
	RoleReviewer Role = "reviewer"
	// RoleSigner signs approved ordinances.
	RoleSigner Role = "signer"
	// RolePublisher numbers and publishes signed ordinances.
	RolePublisher Role = "publisher"
	// RoleAdmin manages sequence books and may perform any action.
	RoleAdmin Role = "admin"
)

// actionRoles maps each action to the roles allowed to perform it.
var actionRoles = map[Action][]Role{
	ActionSubmit:      {RoleAuthor},
	ActionEdit:        {RoleAuthor},
	ActionClaim:       {RoleReviewer},
	ActionApprove:     {RoleReviewer},
	ActionReject:      {RoleReviewer},
	ActionSign:        {RoleSigner},
	ActionPublish:     {RolePublisher, RoleSigner},
	ActionManageBooks: {RoleAdmin},
}

// StaticRoles is a role-table Authorizer loaded from configuration. An empty
// table allows everything, which keeps single-operator deployments usable
// without role bookkeeping.
type StaticRoles struct {
	roles map[string][]Role
}

// NewStaticRoles parses "actor:role1|role2,actor2:role" assignments.
func NewStaticRoles(assignments string) *StaticRoles {
	roles := map[string][]Role{}
	for _, entry := range strings.Split(assignments, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		actor, list, ok := strings.Cut(entry, ":")
		actor = strings.TrimSpace(actor)
		if !ok || actor == "" {
			continue
		}
		for _, role := range strings.Split(list, "|") {
			role = strings.TrimSpace(role)
			if role == "" {
				continue
			}
			roles[actor] = append(roles[actor], Role(role))
		}
	}
	return &StaticRoles{roles: roles}
}

// CanPerform implements Authorizer against the static role table.
func (s *StaticRoles) CanPerform(_ context.Context, actorID string, action Action, _ domain.Ordinance) bool {
	if s == nil || len(s.roles) == 0 {
		return true
	}
	actorRoles, ok := s.roles[actorID]
	if !ok {
		return false
	}
	allowed := actionRoles[action]
	for _, held := range actorRoles {
		if held == RoleAdmin {
			return true
		}
		for _, want := range allowed {
			if held == want {
				return true
			}
		}
	}
	return false
}
