// Package validate checks struct fields against rules declared in a
// `validate` tag:
//
//	Email    string `json:"email"    validate:"required,email,max=255"`
//	Password string `json:"password" validate:"required,min=8,confirmed"`
//	Status   string `json:"status"   validate:"nullable,in=Available,OutOfStock"`
//
// Rules: required, nullable, email, date (YYYY-MM-DD), in=a,b,...,
// min=N, max=N (length for strings, value for numbers), gt=N, gte=N, lt=N,
// lte=N and confirmed (equal to the sibling <field>_confirmation).
// Messages name the field by its json key.
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldError is one failed field. Only the first failing rule of a field is
// reported.
type FieldError struct {
	Field   string
	Message string
}

// Errors lists failures in struct declaration order.
type Errors []FieldError

func (e Errors) Empty() bool { return len(e) == 0 }

// First is the message of the earliest declared invalid field.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		m[fe.Field] = fe.Message
	}
	return m
}

// MarshalJSON renders {"field":"message"}.
func (e Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

// ─── Rules ───────────────────────────────────────────────────────────────────

// check is handed the field, its json name, the rule parameter and the
// enclosing struct. It returns "" when the value passes.
type check func(v reflect.Value, field, param string, parent reflect.Value) string

var rules map[string]check

func init() {
	rules = map[string]check{
		"required":  required,
		"nullable":  func(reflect.Value, string, string, reflect.Value) string { return "" },
		"email":     email,
		"date":      date,
		"in":        in,
		"min":       bound(func(x, n float64) bool { return x >= n }, "be at least %s", "be at least %s characters"),
		"max":       bound(func(x, n float64) bool { return x <= n }, "not be greater than %s", "not exceed %s characters"),
		"gt":        compare(func(x, n float64) bool { return x > n }, "greater than %s"),
		"gte":       compare(func(x, n float64) bool { return x >= n }, "greater than or equal to %s"),
		"lt":        compare(func(x, n float64) bool { return x < n }, "less than %s"),
		"lte":       compare(func(x, n float64) bool { return x <= n }, "less than or equal to %s"),
		"confirmed": confirmed,
	}
}

func required(v reflect.Value, field, _ string, _ reflect.Value) string {
	if isEmpty(v) {
		return fmt.Sprintf("The %s field is required.", field)
	}
	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func email(v reflect.Value, field, _ string, _ reflect.Value) string {
	if !emailRE.MatchString(text(v)) {
		return fmt.Sprintf("The %s must be a valid email address.", field)
	}
	return ""
}

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

func date(v reflect.Value, field, _ string, _ reflect.Value) string {
	if _, err := time.Parse(DateLayout, text(v)); err != nil {
		return fmt.Sprintf("The %s is not a valid date.", field)
	}
	return ""
}

func in(v reflect.Value, field, param string, _ reflect.Value) string {
	s := text(v)
	for _, allowed := range strings.Split(param, ",") {
		if s == strings.TrimSpace(allowed) {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

// bound measures strings by rune count and numbers by value.
func bound(ok func(x, n float64) bool, numMsg, strMsg string) check {
	return func(v reflect.Value, field, param string, _ reflect.Value) string {
		n, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("The %s has a malformed rule.", field)
		}
		if x, isNum := number(v); isNum {
			if !ok(x, n) {
				return fmt.Sprintf("The %s must "+numMsg+".", field, param)
			}
			return ""
		}
		if !ok(float64(utf8.RuneCountInString(text(v))), n) {
			return fmt.Sprintf("The %s must "+strMsg+".", field, param)
		}
		return ""
	}
}

func compare(ok func(x, n float64) bool, msg string) check {
	return func(v reflect.Value, field, param string, _ reflect.Value) string {
		n, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("The %s has a malformed rule.", field)
		}
		x, isNum := number(v)
		if !isNum {
			x, err = strconv.ParseFloat(text(v), 64)
			if err != nil {
				return fmt.Sprintf("The %s field must be a number.", field)
			}
		}
		if !ok(x, n) {
			return fmt.Sprintf("The %s must be "+msg+".", field, param)
		}
		return ""
	}
}

func confirmed(v reflect.Value, field, _ string, parent reflect.Value) string {
	other, found := sibling(parent, field+"_confirmation")
	if !found || text(other) != text(v) {
		return fmt.Sprintf("The %s confirmation does not match.", field)
	}
	return ""
}

// ─── Walking ─────────────────────────────────────────────────────────────────

// Struct validates the exported, tagged fields of v, which may be a struct
// or a pointer to one.
func Struct(v any) Errors {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	var errs Errors
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup("validate")
		if !ok || !sf.IsExported() {
			continue
		}
		field := jsonName(sf)
		value := rv.Field(i)

		parsed, err := parse(tag)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("The %s has a malformed rule.", field)})
			continue
		}
		if parsed.has("nullable") && isEmpty(value) {
			continue
		}
		if !parsed.has("required") && isEmpty(value) && value.Kind() == reflect.String {
			// Optional strings are only checked once supplied.
			continue
		}
		for _, r := range parsed {
			if msg := rules[r.name](value, field, r.param, rv); msg != "" {
				errs = append(errs, FieldError{Field: field, Message: msg})
				break
			}
		}
	}
	return errs
}

type rule struct{ name, param string }

type ruleList []rule

func (l ruleList) has(name string) bool {
	for _, r := range l {
		if r.name == name {
			return true
		}
	}
	return false
}

// parse splits on commas. A token that does not start with a known rule
// name continues the previous parameter, which is how in=a,b,c is read.
func parse(tag string) (ruleList, error) {
	var out ruleList
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		name, param, _ := strings.Cut(tok, "=")
		if _, known := rules[name]; known {
			out = append(out, rule{name: name, param: param})
			continue
		}
		if len(out) == 0 || out[len(out)-1].param == "" {
			return nil, fmt.Errorf("validate: unknown rule %q", tok)
		}
		out[len(out)-1].param += "," + tok
	}
	return out, nil
}

// ─── Values ──────────────────────────────────────────────────────────────────

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	return v.IsZero()
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Ptr:
		if !v.IsNil() {
			return number(v.Elem())
		}
	}
	return 0, false
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func sibling(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}
