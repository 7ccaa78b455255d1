package model

import (
	"fmt"
	"strings"
)

const (
	DomainMenu    = "menu"
	DomainUser    = "user"
	DomainProduct = "product"
)

const (
	VerbMain     = "main"
	VerbUsers    = "users"
	VerbStats    = "stats"
	VerbProducts = "products"

	VerbList    = "list"
	VerbBack    = "back"
	VerbSelect  = "select"
	VerbBlock   = "block"
	VerbUnblock = "unblock"
	VerbWarn    = "warn"
	VerbUnwarn  = "unwarn"
	VerbDelete  = "delete"

	VerbApprove = "approve"
	VerbReject  = "reject"
	VerbReview  = "review"
)

// Action is a decoded inline-button payload of the form
// <domain>_<verb>[_<entityId>]. Everything after the second separator is the
// entity id, verbatim.
type Action struct {
	Domain   string
	Verb     string
	EntityID EntityID
}

func NewAction(domain, verb string, id EntityID) Action {
	return Action{Domain: domain, Verb: verb, EntityID: id}
}

func ParseAction(data string) (Action, error) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Action{}, fmt.Errorf("malformed action %q", data)
	}
	a := Action{Domain: parts[0], Verb: parts[1]}
	if len(parts) == 3 {
		a.EntityID = EntityID(parts[2])
	}
	return a, nil
}

// String encodes the action back into callback data.
func (a Action) String() string {
	if a.EntityID == "" {
		return a.Domain + "_" + a.Verb
	}
	return a.Domain + "_" + a.Verb + "_" + string(a.EntityID)
}
