package generation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindNumber
	KindEnum
	KindStringList
	KindFlagMap
)

// Field declares one request parameter. Min and Max are inclusive and only
// apply to numeric kinds. Enum lists the accepted values for KindEnum and
// for each item of a KindStringList; for KindFlagMap it lists the known flags.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Default  interface{}
	MaxLen   int
	Min, Max float64
	Enum     []string
}

// Schema is an ordered list of fields; prompts restate parameters in this order.
type Schema []Field

// Params holds validated values: string, int, float64, []string or
// map[string]bool depending on the field kind.
type Params map[string]interface{}

func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p Params) Int(name string) int {
	n, _ := p[name].(int)
	return n
}

func (p Params) Float(name string) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (p Params) Strings(name string) []string {
	s, _ := p[name].([]string)
	return s
}

func (p Params) Flags(name string) map[string]bool {
	m, _ := p[name].(map[string]bool)
	return m
}

// Validate checks raw against the schema, collecting every violation, and
// returns the normalized parameters with defaults applied. Keys not declared
// in the schema are ignored.
func (s Schema) Validate(raw map[string]interface{}) (Params, error) {
	out := make(Params, len(s))
	problems := make(map[string][]string)

	for _, f := range s {
		v, present := raw[f.Name]
		if !present || blank(v) {
			if f.Required {
				problems[f.Name] = append(problems[f.Name], fmt.Sprintf("O campo %s é obrigatório.", f.Name))
				continue
			}
			out[f.Name] = f.defaultValue()
			continue
		}

		val, msgs := f.coerce(v)
		if len(msgs) > 0 {
			problems[f.Name] = msgs
			continue
		}
		out[f.Name] = val
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	return out, nil
}

func blank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

func (f Field) defaultValue() interface{} {
	switch f.Kind {
	case KindStringList:
		list := []string{}
		if d, ok := f.Default.([]string); ok {
			list = append(list, d...)
		}
		return list
	case KindFlagMap:
		flags := make(map[string]bool, len(f.Enum))
		for _, name := range f.Enum {
			flags[name] = false
		}
		return flags
	}
	return f.Default
}

func (f Field) coerce(v interface{}) (interface{}, []string) {
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, []string{fmt.Sprintf("O campo %s deve ser um texto.", f.Name)}
		}
		s = strings.TrimSpace(s)
		if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
			return nil, []string{fmt.Sprintf("O campo %s não pode ter mais de %d caracteres.", f.Name, f.MaxLen)}
		}
		return s, nil

	case KindInteger:
		n, ok := number(v)
		if !ok || n != math.Trunc(n) {
			return nil, []string{fmt.Sprintf("O campo %s deve ser um número inteiro.", f.Name)}
		}
		if msg := f.checkRange(n); msg != "" {
			return nil, []string{msg}
		}
		return int(n), nil

	case KindNumber:
		n, ok := number(v)
		if !ok {
			return nil, []string{fmt.Sprintf("O campo %s deve ser um número.", f.Name)}
		}
		if msg := f.checkRange(n); msg != "" {
			return nil, []string{msg}
		}
		return n, nil

	case KindEnum:
		s, ok := v.(string)
		if !ok || !contains(f.Enum, strings.TrimSpace(s)) {
			return nil, []string{fmt.Sprintf("O valor selecionado para %s é inválido. Valores aceitos: %s.", f.Name, strings.Join(f.Enum, ", "))}
		}
		return strings.TrimSpace(s), nil

	case KindStringList:
		items, ok := v.([]interface{})
		if !ok {
			return nil, []string{fmt.Sprintf("O campo %s deve ser uma lista.", f.Name)}
		}
		var msgs []string
		list := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			s = strings.TrimSpace(s)
			if !ok || (len(f.Enum) > 0 && !contains(f.Enum, s)) {
				msgs = append(msgs, fmt.Sprintf("O item %d de %s é inválido. Valores aceitos: %s.", i+1, f.Name, strings.Join(f.Enum, ", ")))
				continue
			}
			list = append(list, s)
		}
		if len(msgs) > 0 {
			return nil, msgs
		}
		return list, nil

	case KindFlagMap:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, []string{fmt.Sprintf("O campo %s deve ser um objeto de opções verdadeiro/falso.", f.Name)}
		}
		flags := f.defaultValue().(map[string]bool)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var msgs []string
		for _, k := range keys {
			b, isBool := m[k].(bool)
			switch {
			case !contains(f.Enum, k):
				msgs = append(msgs, fmt.Sprintf("Opção desconhecida em %s: %s.", f.Name, k))
			case !isBool:
				msgs = append(msgs, fmt.Sprintf("A opção %s de %s deve ser verdadeiro ou falso.", k, f.Name))
			default:
				flags[k] = b
			}
		}
		if len(msgs) > 0 {
			return nil, msgs
		}
		return flags, nil
	}

	return nil, []string{fmt.Sprintf("O campo %s tem um tipo não suportado.", f.Name)}
}

func (f Field) checkRange(n float64) string {
	if n < f.Min || n > f.Max {
		return fmt.Sprintf("O campo %s deve estar entre %s e %s.", f.Name, formatNumber(f.Min), formatNumber(f.Max))
	}
	return ""
}

// number accepts JSON numbers (decoded with or without UseNumber) and numeric strings.
func number(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
