package storage

import (
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// TargetToRecord converts a registry Target into its persisted form.
func TargetToRecord(t *registry.Target) TargetRecord {
	return TargetRecord{
		Name:       t.Name,
		Type:       t.Type,
		Actions:    t.Actions.Values(),
		Attributes: attrsToMap(t.Attributes),
	}
}

// TargetFromRecord converts a persisted Target back into a registry Target.
func TargetFromRecord(r TargetRecord) *registry.Target {
	return &registry.Target{
		Name:       r.Name,
		Type:       r.Type,
		Actions:    value.NewStringSet(r.Actions...),
		Attributes: mapToAttrs(r.Attributes),
	}
}

// ActorToRecord converts a registry Actor into its persisted form.
func ActorToRecord(a *registry.Actor) ActorRecord {
	return ActorRecord{
		Name:       a.Name,
		Type:       a.Type,
		Attributes: attrsToMap(a.Attributes),
	}
}

// ActorFromRecord converts a persisted Actor back into a registry Actor.
func ActorFromRecord(r ActorRecord) *registry.Actor {
	return &registry.Actor{
		Name:       r.Name,
		Type:       r.Type,
		Attributes: mapToAttrs(r.Attributes),
	}
}

// GroupToRecord converts a registry Group into its persisted form.
func GroupToRecord(g *registry.Group) GroupRecord {
	members := g.MemberList()
	mrs := make([]MemberRecord, 0, len(members))
	for _, m := range members {
		mrs = append(mrs, MemberRecord{Name: m.Name, Type: m.Type})
	}
	return GroupRecord{
		Name:        g.Name,
		Description: g.Description,
		Members:     mrs,
		Roles:       g.Roles.Values(),
	}
}

// GroupFromRecord converts a persisted Group's name/description/roles into
// registry constructor arguments; members are converted separately via
// [MembersFromRecord] since AddGroup takes them as a distinct parameter.
func GroupFromRecord(r GroupRecord) (name, description string, roles []string) {
	return r.Name, r.Description, r.Roles
}

// MembersFromRecord converts persisted member records into registry Member
// values.
func MembersFromRecord(recs []MemberRecord) []registry.Member {
	out := make([]registry.Member, 0, len(recs))
	for _, r := range recs {
		out = append(out, registry.Member{Name: r.Name, Type: r.Type})
	}
	return out
}

// RoleToRecord converts a registry Role into its persisted form.
func RoleToRecord(r *registry.Role) RoleRecord {
	return RoleRecord{
		Name:        r.Name,
		Description: r.Description,
		GrantedTo:   r.GrantedTo.Values(),
	}
}

// RoleFromRecord converts a persisted Role's name/description/granted_to
// into registry constructor arguments, mirroring GroupFromRecord.
func RoleFromRecord(r RoleRecord) (name, description string, grantedTo []string) {
	return r.Name, r.Description, r.GrantedTo
}

func attrsToMap(a *value.AttributeMap) map[string][]string {
	out := make(map[string][]string)
	if a == nil {
		return out
	}
	for _, k := range a.Keys() {
		out[k] = a.Get(k).Values()
	}
	return out
}

func mapToAttrs(m map[string][]string) *value.AttributeMap {
	out := value.NewAttributeMap()
	for k, vs := range m {
		out.AddValues(k, vs...)
	}
	return out
}

const (
	opIs     = "IS"
	opIsNot  = "IS_NOT"
	opHas    = "HAS"
	opHasNot = "HAS_NOT"

	opEquals   = "EQUALS"
	opLessThan = "LESS_THAN"
	opMoreThan = "MORE_THAN"

	decisionAllow = "ALLOW"
	decisionDeny  = "DENY"
)

func stringOpToRecord(op value.StringOp) string {
	if op == value.IsNot {
		return opIsNot
	}
	return opIs
}

func stringOpFromRecord(s string) value.StringOp {
	if s == opIsNot {
		return value.IsNot
	}
	return value.Is
}

func kvOpToRecord(op value.KvOp) string {
	if op == value.HasNot {
		return opHasNot
	}
	return opHas
}

func kvOpFromRecord(s string) value.KvOp {
	if s == opHasNot {
		return value.HasNot
	}
	return value.Has
}

func numberOpToRecord(op value.NumberOp) string {
	switch op {
	case value.LessThan:
		return opLessThan
	case value.MoreThan:
		return opMoreThan
	default:
		return opEquals
	}
}

func numberOpFromRecord(s string) value.NumberOp {
	switch s {
	case opLessThan:
		return value.LessThan
	case opMoreThan:
		return value.MoreThan
	default:
		return value.Equals
	}
}

func stringCheckToRecord(c *value.StringCheck) *StringCheckRecord {
	if c == nil {
		return nil
	}
	return &StringCheckRecord{Op: stringOpToRecord(c.Op), Values: c.Values}
}

func stringCheckFromRecord(r *StringCheckRecord) *value.StringCheck {
	if r == nil {
		return nil
	}
	return &value.StringCheck{Op: stringOpFromRecord(r.Op), Values: r.Values}
}

func kvChecksToRecord(checks []*value.KvCheck) []KvCheckRecord {
	out := make([]KvCheckRecord, 0, len(checks))
	for _, c := range checks {
		out = append(out, KvCheckRecord{Key: c.Key, Op: kvOpToRecord(c.Op), Values: c.Values})
	}
	return out
}

func kvChecksFromRecord(recs []KvCheckRecord) []*value.KvCheck {
	out := make([]*value.KvCheck, 0, len(recs))
	for _, r := range recs {
		out = append(out, &value.KvCheck{Key: r.Key, Op: kvOpFromRecord(r.Op), Values: r.Values})
	}
	return out
}

func numberCheckToRecord(c *value.NumberCheck) *NumberCheckRecord {
	if c == nil {
		return nil
	}
	return &NumberCheckRecord{Op: numberOpToRecord(c.Op), Val: c.Val}
}

func numberCheckFromRecord(r *NumberCheckRecord) *value.NumberCheck {
	if r == nil {
		return nil
	}
	return &value.NumberCheck{Op: numberOpFromRecord(r.Op), Val: r.Val}
}

// PolicyToRecord converts a registry Policy into its persisted form.
func PolicyToRecord(p *registry.Policy) PolicyRecord {
	rec := PolicyRecord{
		Name:               p.Name,
		Description:        p.Description,
		EnvAttributeChecks: kvChecksToRecord(p.EnvAttributeChecks),
	}
	if p.Decision == registry.Deny {
		rec.Decision = decisionDeny
	} else {
		rec.Decision = decisionAllow
	}

	if p.ActorCheck != nil {
		rec.ActorCheck = &ActorCheckRecord{
			Name:       stringCheckToRecord(p.ActorCheck.Name),
			TypeStr:    stringCheckToRecord(p.ActorCheck.TypeStr),
			Attributes: kvChecksToRecord(p.ActorCheck.Attributes),
			Bucket:     numberCheckToRecord(p.ActorCheck.Bucket),
		}
	}
	if p.TargetCheck != nil {
		rec.TargetCheck = &TargetCheckRecord{
			Name:         stringCheckToRecord(p.TargetCheck.Name),
			TypeStr:      stringCheckToRecord(p.TargetCheck.TypeStr),
			Action:       stringCheckToRecord(p.TargetCheck.Action),
			Attributes:   kvChecksToRecord(p.TargetCheck.Attributes),
			MatchInActor: p.TargetCheck.MatchInActor,
			MatchInEnv:   p.TargetCheck.MatchInEnv,
		}
	}
	return rec
}

// PolicyFromRecord converts a persisted Policy back into a registry Policy.
func PolicyFromRecord(r PolicyRecord) *registry.Policy {
	p := &registry.Policy{
		Name:               r.Name,
		Description:        r.Description,
		EnvAttributeChecks: kvChecksFromRecord(r.EnvAttributeChecks),
	}
	if r.Decision == decisionDeny {
		p.Decision = registry.Deny
	} else {
		p.Decision = registry.Allow
	}

	if r.ActorCheck != nil {
		p.ActorCheck = &registry.ActorCheck{
			Name:       stringCheckFromRecord(r.ActorCheck.Name),
			TypeStr:    stringCheckFromRecord(r.ActorCheck.TypeStr),
			Attributes: kvChecksFromRecord(r.ActorCheck.Attributes),
			Bucket:     numberCheckFromRecord(r.ActorCheck.Bucket),
		}
	}
	if r.TargetCheck != nil {
		p.TargetCheck = &registry.TargetCheck{
			Name:         stringCheckFromRecord(r.TargetCheck.Name),
			TypeStr:      stringCheckFromRecord(r.TargetCheck.TypeStr),
			Action:       stringCheckFromRecord(r.TargetCheck.Action),
			Attributes:   kvChecksFromRecord(r.TargetCheck.Attributes),
			MatchInActor: r.TargetCheck.MatchInActor,
			MatchInEnv:   r.TargetCheck.MatchInEnv,
		}
	}
	return p
}
