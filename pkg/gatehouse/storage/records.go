package storage

// TargetRecord is the persisted representation of a [registry.Target]. It
// doubles as the RPC wire shape for target CRUD bodies.
type TargetRecord struct {
	Name       string              `yaml:"name" json:"name"`
	Type       string              `yaml:"type" json:"type"`
	Actions    []string            `yaml:"actions" json:"actions"`
	Attributes map[string][]string `yaml:"attributes" json:"attributes"`
}

// ActorRecord is the persisted representation of a [registry.Actor]. It
// doubles as the RPC wire shape for actor CRUD bodies.
type ActorRecord struct {
	Name       string              `yaml:"name" json:"name"`
	Type       string              `yaml:"type" json:"type"`
	Attributes map[string][]string `yaml:"attributes" json:"attributes"`
}

// MemberRecord is the persisted representation of a [registry.Member].
type MemberRecord struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// GroupRecord is the persisted representation of a [registry.Group]. It
// doubles as the RPC wire shape for group CRUD bodies.
type GroupRecord struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Members     []MemberRecord `yaml:"members" json:"members"`
	Roles       []string       `yaml:"roles" json:"roles"`
}

// RoleRecord is the persisted representation of a [registry.Role]. It
// doubles as the RPC wire shape for role CRUD bodies.
type RoleRecord struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	GrantedTo   []string `yaml:"granted_to" json:"granted_to"`
}

// StringCheckRecord is the persisted representation of a [value.StringCheck].
type StringCheckRecord struct {
	Op     string   `yaml:"op" json:"op"`
	Values []string `yaml:"values" json:"values"`
}

// KvCheckRecord is the persisted representation of a [value.KvCheck].
type KvCheckRecord struct {
	Key    string   `yaml:"key" json:"key"`
	Op     string   `yaml:"op" json:"op"`
	Values []string `yaml:"values" json:"values"`
}

// NumberCheckRecord is the persisted representation of a [value.NumberCheck].
type NumberCheckRecord struct {
	Op  string `yaml:"op" json:"op"`
	Val int32  `yaml:"val" json:"val"`
}

// ActorCheckRecord is the persisted representation of a [registry.ActorCheck].
type ActorCheckRecord struct {
	Name       *StringCheckRecord `yaml:"name,omitempty" json:"name,omitempty"`
	TypeStr    *StringCheckRecord `yaml:"typestr,omitempty" json:"typestr,omitempty"`
	Attributes []KvCheckRecord    `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Bucket     *NumberCheckRecord `yaml:"bucket,omitempty" json:"bucket,omitempty"`
}

// TargetCheckRecord is the persisted representation of a [registry.TargetCheck].
type TargetCheckRecord struct {
	Name         *StringCheckRecord `yaml:"name,omitempty" json:"name,omitempty"`
	TypeStr      *StringCheckRecord `yaml:"typestr,omitempty" json:"typestr,omitempty"`
	Action       *StringCheckRecord `yaml:"action,omitempty" json:"action,omitempty"`
	Attributes   []KvCheckRecord    `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	MatchInActor []string           `yaml:"match_in_actor,omitempty" json:"match_in_actor,omitempty"`
	MatchInEnv   []string           `yaml:"match_in_env,omitempty" json:"match_in_env,omitempty"`
}

// PolicyRecord is the persisted representation of a [registry.Policy]. It
// doubles as the RPC wire shape for policy CRUD bodies.
type PolicyRecord struct {
	Name               string             `yaml:"name" json:"name"`
	Description        string             `yaml:"description,omitempty" json:"description,omitempty"`
	ActorCheck         *ActorCheckRecord  `yaml:"actor_check,omitempty" json:"actor_check,omitempty"`
	EnvAttributeChecks []KvCheckRecord    `yaml:"env_attribute_checks,omitempty" json:"env_attribute_checks,omitempty"`
	TargetCheck        *TargetCheckRecord `yaml:"target_check,omitempty" json:"target_check,omitempty"`
	Decision           string             `yaml:"decision" json:"decision"`
}
