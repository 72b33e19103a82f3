package openrouter

import (
	"fmt"
	"strings"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/tidwall/gjson"
)

// ValidationError lists every way a response body deviates from the key-info
// shape.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid key info response: " + strings.Join(e.Issues, "; ")
}

// DecodeKeyInfo validates body against
//
//	{"data":{"label":string|null,"usage":number,"is_free_tier":bool,
//	  "is_provisioning_key":bool,"rate_limit":{"requests":number,"interval":string},
//	  "limit":number|null}}
//
// and returns the decoded data. Extra fields are ignored.
func DecodeKeyInfo(body []byte) (*model.OpenRouterKeyInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ValidationError{Issues: []string{"body: invalid JSON"}}
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, &ValidationError{Issues: []string{"data: " + describe(data, "object")}}
	}

	v := validator{}
	info := &model.OpenRouterKeyInfo{
		Label:             v.nullableString(data, "label"),
		Usage:             v.number(data, "usage"),
		IsFreeTier:        v.boolean(data, "is_free_tier"),
		IsProvisioningKey: v.boolean(data, "is_provisioning_key"),
		Limit:             v.nullableNumber(data, "limit"),
	}
	rateLimit := data.Get("rate_limit")
	if rateLimit.IsObject() {
		info.RateLimit = model.OpenRouterRateLimit{
			Requests: v.number(rateLimit, "requests", "rate_limit"),
			Interval: v.str(rateLimit, "interval", "rate_limit"),
		}
	} else {
		v.fail("rate_limit", describe(rateLimit, "object"))
	}

	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	return info, nil
}

type validator struct {
	issues []string
}

func (v *validator) fail(path, msg string) {
	v.issues = append(v.issues, "data."+path+": "+msg)
}

func fieldPath(field string, parents []string) string {
	if len(parents) == 0 {
		return field
	}
	return strings.Join(parents, ".") + "." + field
}

func (v *validator) number(obj gjson.Result, field string, parents ...string) float64 {
	r := obj.Get(field)
	if r.Type != gjson.Number {
		v.fail(fieldPath(field, parents), describe(r, "number"))
		return 0
	}
	return r.Float()
}

func (v *validator) str(obj gjson.Result, field string, parents ...string) string {
	r := obj.Get(field)
	if r.Type != gjson.String {
		v.fail(fieldPath(field, parents), describe(r, "string"))
		return ""
	}
	return r.Str
}

func (v *validator) boolean(obj gjson.Result, field string) bool {
	r := obj.Get(field)
	if !r.IsBool() {
		v.fail(field, describe(r, "boolean"))
		return false
	}
	return r.Bool()
}

func (v *validator) nullableString(obj gjson.Result, field string) *string {
	r := obj.Get(field)
	switch {
	case r.Exists() && r.Type == gjson.Null:
		return nil
	case r.Type == gjson.String:
		s := r.Str
		return &s
	default:
		v.fail(field, describe(r, "string or null"))
		return nil
	}
}

func (v *validator) nullableNumber(obj gjson.Result, field string) *float64 {
	r := obj.Get(field)
	switch {
	case r.Exists() && r.Type == gjson.Null:
		return nil
	case r.Type == gjson.Number:
		f := r.Float()
		return &f
	default:
		v.fail(field, describe(r, "number or null"))
		return nil
	}
}

func describe(r gjson.Result, want string) string {
	if !r.Exists() {
		return "required " + want
	}
	return fmt.Sprintf("expected %s, got %s", want, kindOf(r))
}

func kindOf(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.IsBool():
		return "boolean"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		return r.Type.String()
	}
}
