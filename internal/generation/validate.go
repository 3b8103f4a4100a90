package generation

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Content is a repaired envelope ready to be serialized. Total counts the
// primary records kept; Dropped counts every record discarded at any level.
type Content struct {
	Type    ContentType
	Value   interface{}
	Total   int
	Dropped int
}

// Validate parses a JSON candidate, checks its top-level shape and repairs
// it record by record. Validating the JSON of an envelope returned by
// Validate yields the same envelope.
func Validate(ct ContentType, candidate string, p Params) (*Content, error) {
	k, ok := kinds[ct]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", ct)
	}

	var probe interface{}
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, &MalformedJSONError{Message: err.Error(), Raw: candidate}
	}

	doc := gjson.Parse(candidate)
	switch {
	case k.root == rootArray && !doc.IsArray():
		return nil, &SchemaMismatchError{Reason: "expected a JSON array at the top level", Raw: candidate}
	case k.root == rootObject && !doc.IsObject():
		return nil, &SchemaMismatchError{Reason: "expected a JSON object at the top level", Raw: candidate}
	case k.required != "" && !doc.Get(k.required).Exists():
		return nil, &SchemaMismatchError{Reason: fmt.Sprintf("missing required key %q", k.required), Raw: candidate}
	}

	value, total, dropped := k.repair(doc, p)
	if total == 0 {
		return nil, &NoValidContentError{Dropped: dropped, Raw: candidate}
	}
	return &Content{Type: ct, Value: value, Total: total, Dropped: dropped}, nil
}
