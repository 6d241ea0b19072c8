// Package command is the closed set of request kinds the client can send.
package command

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
)

type Command uint8

const (
	Unknown Command = iota
	Track
	EngageSet
	EngageSetOnce
	EngageAdd
	EngageAppend
	EngageUnion
	EngageRemove
	EngageUnset
	EngageDelete
)

const (
	TrackEndpoint  = "/track"
	EngageEndpoint = "/engage"
)

type descriptor struct {
	name     string
	operator string
}

var descriptors = map[Command]descriptor{
	Track:         {name: "track"},
	EngageSet:     {name: "engage", operator: "$set"},
	EngageSetOnce: {name: "engage_set_once", operator: "$set_once"},
	EngageAdd:     {name: "engage_add", operator: "$add"},
	EngageAppend:  {name: "engage_append", operator: "$append"},
	EngageUnion:   {name: "engage_union", operator: "$union"},
	EngageRemove:  {name: "engage_remove", operator: "$remove"},
	EngageUnset:   {name: "engage_unset", operator: "$unset"},
	EngageDelete:  {name: "engage_delete", operator: "$delete"},
}

// aliases resolve to a canonical command but are never listed.
var aliases = map[string]Command{
	"engage_set": EngageSet,
}

func Parse(name string) (Command, error) {
	name = strings.TrimSpace(name)
	if c, ok := aliases[name]; ok {
		return c, nil
	}
	for c, s := range descriptors {
		if s.name == name {
			return c, nil
		}
	}
	return Unknown, breverrors.WrapAndTrace(&breverrors.UnsupportedCommandError{Command: name})
}

func (c Command) String() string {
	if s, ok := descriptors[c]; ok {
		return s.name
	}
	return "unknown"
}

func (c Command) Valid() bool {
	_, ok := descriptors[c]
	return ok
}

func (c Command) IsEngage() bool {
	return c.Valid() && c != Track
}

// Endpoint is the path appended to the collector base URL, "" for Unknown.
func (c Command) Endpoint() string {
	switch {
	case c == Track:
		return TrackEndpoint
	case c.IsEngage():
		return EngageEndpoint
	default:
		return ""
	}
}

// Operator is the profile-mutation key ("$set", ...) of an engage command.
func (c Command) Operator() string {
	return descriptors[c].operator
}

func (c Command) RequiresToken() bool {
	return c.Valid()
}

func Supported() mapset.Set[Command] {
	set := mapset.NewSet[Command]()
	for c := range descriptors {
		set.Add(c)
	}
	return set
}

// All returns every supported command in declaration order.
func All() []Command {
	all := Supported().ToSlice()
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

func Names() []string {
	names := make([]string, 0, len(descriptors))
	for _, s := range descriptors {
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}
