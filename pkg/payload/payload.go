// Package payload builds, encodes and decodes the JSON bodies carried in the
// data query parameter of /track and /engage requests.
package payload

// TrackEvent is the /track body. Properties always carries "token" first.
type TrackEvent struct {
	Event      string      `json:"event"`
	Properties *Properties `json:"properties"`
}

// EngageOperation is the /engage body: the profile identity plus exactly one
// operator.
type EngageOperation struct {
	Token      string
	DistinctID string
	Operation  Operation
}

func (e EngageOperation) MarshalJSON() ([]byte, error) {
	body := NewProperties().
		Set("$token", e.Token).
		Set("$distinct_id", e.DistinctID)
	if e.Operation != nil {
		body.Set(e.Operation.Operator(), e.Operation.value())
	}
	return body.MarshalJSON()
}

// Operation is one of the eight profile mutations. The set of
// implementations is closed to this package.
type Operation interface {
	Operator() string
	value() any
}

type Set struct{ Properties *Properties }

type SetOnce struct{ Properties *Properties }

// Add holds numeric deltas only.
type Add struct{ Deltas *Properties }

type Append struct{ Properties *Properties }

// Union holds list values only.
type Union struct{ Lists *Properties }

type Remove struct{ Properties *Properties }

type Unset struct{ Names []string }

// Delete removes the whole profile and encodes as "$delete": "".
type Delete struct{}

func (Set) Operator() string     { return "$set" }
func (SetOnce) Operator() string { return "$set_once" }
func (Add) Operator() string     { return "$add" }
func (Append) Operator() string  { return "$append" }
func (Union) Operator() string   { return "$union" }
func (Remove) Operator() string  { return "$remove" }
func (Unset) Operator() string   { return "$unset" }
func (Delete) Operator() string  { return "$delete" }

func (o Set) value() any     { return orEmpty(o.Properties) }
func (o SetOnce) value() any { return orEmpty(o.Properties) }
func (o Add) value() any     { return orEmpty(o.Deltas) }
func (o Append) value() any  { return orEmpty(o.Properties) }
func (o Union) value() any   { return orEmpty(o.Lists) }
func (o Remove) value() any  { return orEmpty(o.Properties) }

func (o Unset) value() any {
	if o.Names == nil {
		return []string{}
	}
	return o.Names
}

func (Delete) value() any { return "" }

func orEmpty(p *Properties) *Properties {
	if p == nil {
		return NewProperties()
	}
	return p
}
