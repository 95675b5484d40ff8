package entity

// CooldownScope is what a claim cooldown is tracked by.
type CooldownScope string

const (
	CooldownScopeAddress CooldownScope = "address"
	CooldownScopeIP      CooldownScope = "ip"
)

func (s CooldownScope) String() string {
	return string(s)
}
