package rpc

import (
	"net/http"

	"github.com/diggyk/gatehouse/internal/gatehouse/engine"
	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// checkRequest is the wire body of POST /v1/check.
type checkRequest struct {
	ActorName       string              `json:"actor_name"`
	ActorType       string              `json:"actor_type"`
	ActorAttributes map[string][]string `json:"actor_attributes,omitempty"`
	EnvAttributes   map[string][]string `json:"env_attributes,omitempty"`
	TargetName      string              `json:"target_name"`
	TargetType      string              `json:"target_type"`
	TargetAction    string              `json:"target_action"`
}

func (r checkRequest) toEngineRequest() engine.Request {
	return engine.Request{
		ActorName:       r.ActorName,
		ActorType:       r.ActorType,
		ActorAttributes: attrsFromMap(r.ActorAttributes),
		EnvAttributes:   attrsFromMap(r.EnvAttributes),
		TargetName:      r.TargetName,
		TargetType:      r.TargetType,
		TargetAction:    r.TargetAction,
	}
}

// checkResponse is the wire body of a successful check.
type checkResponse struct {
	Decision string `json:"decision"`
}

func decisionString(d registry.Decision) string {
	if d == registry.Deny {
		return "DENY"
	}
	return "ALLOW"
}

// targetChangeRequest is the wire body of a target modify request.
type targetChangeRequest struct {
	AddActions       []string            `json:"add_actions,omitempty"`
	RemoveActions    []string            `json:"remove_actions,omitempty"`
	AddAttributes    map[string][]string `json:"add_attributes,omitempty"`
	RemoveAttributes map[string][]string `json:"remove_attributes,omitempty"`
}

func (r targetChangeRequest) toRegistryChange() registry.TargetAttrChange {
	return registry.TargetAttrChange{
		AddActions:       r.AddActions,
		RemoveActions:    r.RemoveActions,
		AddAttributes:    r.AddAttributes,
		RemoveAttributes: r.RemoveAttributes,
	}
}

// actorChangeRequest is the wire body of an actor modify request.
type actorChangeRequest struct {
	AddAttributes    map[string][]string `json:"add_attributes,omitempty"`
	RemoveAttributes map[string][]string `json:"remove_attributes,omitempty"`
}

func (r actorChangeRequest) toRegistryChange() registry.ActorAttrChange {
	return registry.ActorAttrChange{
		AddAttributes:    r.AddAttributes,
		RemoveAttributes: r.RemoveAttributes,
	}
}

// groupChangeRequest is the wire body of a group modify request.
type groupChangeRequest struct {
	AddMembers    []registry.Member `json:"add_members,omitempty"`
	RemoveMembers []registry.Member `json:"remove_members,omitempty"`
	AddRoles      []string          `json:"add_roles,omitempty"`
	RemoveRoles   []string          `json:"remove_roles,omitempty"`
	Description   *string           `json:"description,omitempty"`
}

func (r groupChangeRequest) toRegistryChange() registry.GroupChange {
	return registry.GroupChange{
		AddMembers:    r.AddMembers,
		RemoveMembers: r.RemoveMembers,
		AddRoles:      r.AddRoles,
		RemoveRoles:   r.RemoveRoles,
		Description:   r.Description,
	}
}

// roleChangeRequest is the wire body of a role modify request.
type roleChangeRequest struct {
	AddGrantedTo    []string `json:"add_granted_to,omitempty"`
	RemoveGrantedTo []string `json:"remove_granted_to,omitempty"`
	Description     *string  `json:"description,omitempty"`
}

func (r roleChangeRequest) toRegistryChange() registry.RoleChange {
	return registry.RoleChange{
		AddGrantedTo:    r.AddGrantedTo,
		RemoveGrantedTo: r.RemoveGrantedTo,
		Description:     r.Description,
	}
}

// errorBody is the wire shape of a failed request. Code is the HTTP status
// code of the response (see [httpStatusFor]), not a gRPC code.
type errorBody struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// httpStatusFor maps a gatehouse error onto the HTTP status code that best
// reflects its [common.Kind].
func httpStatusFor(err error) int {
	gatehouseErr, ok := err.(*common.Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch gatehouseErr.Kind {
	case common.KindInvalidArgument:
		return http.StatusBadRequest
	case common.KindAlreadyExists:
		return http.StatusConflict
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindReferenceMissing:
		return http.StatusPreconditionFailed
	case common.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func attrsFromMap(m map[string][]string) *value.AttributeMap {
	out := value.NewAttributeMap()
	for k, vs := range m {
		out.AddValues(k, vs...)
	}
	return out
}
