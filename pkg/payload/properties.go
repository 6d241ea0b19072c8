package payload

import (
	"bytes"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Properties is a JSON object that keeps insertion order, so an encoded
// payload is byte-stable for a given sequence of Set calls.
type Properties struct {
	pairs *orderedmap.OrderedMap[string, any]
}

func NewProperties() *Properties {
	return &Properties{pairs: orderedmap.New[string, any]()}
}

// Set adds or replaces key. Replacing keeps the original position.
func (p *Properties) Set(key string, value any) *Properties {
	if p.pairs == nil {
		p.pairs = orderedmap.New[string, any]()
	}
	p.pairs.Set(key, value)
	return p
}

func (p *Properties) Get(key string) (any, bool) {
	if p == nil || p.pairs == nil {
		return nil, false
	}
	return p.pairs.Get(key)
}

func (p *Properties) Len() int {
	if p == nil || p.pairs == nil {
		return 0
	}
	return p.pairs.Len()
}

func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.Len())
	p.Each(func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

func (p *Properties) Each(fn func(key string, value any)) {
	if p == nil || p.pairs == nil {
		return
	}
	for pair := p.pairs.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (p *Properties) Copy() *Properties {
	out := NewProperties()
	p.Each(func(key string, value any) {
		out.Set(key, value)
	})
	return out
}

func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	p.Each(func(key string, value any) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var k, v []byte
		if k, err = marshalCompact(key); err != nil {
			return
		}
		if v, err = marshalCompact(value); err != nil {
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
