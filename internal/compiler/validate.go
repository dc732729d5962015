package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
)

// Validation error codes (E100-E199) and warning codes (W100-W199).
const (
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	ErrKindUnknown          = "E120" // kind is not one of ir.ValidKinds
	ErrParameterMissing     = "E121" // required parameter absent
	ErrInvalidParameter     = "E122" // limit is non-finite or negative
	ErrRegionMissingInner   = "E123" // region has no inner constraint
	ErrInvalidRef           = "E124" // ref node without a target name
	ErrAccelerationInverted = "E125" // min_acceleration > max_acceleration
	ErrUnresolvedRef        = "E126" // ref names a constraint that does not exist
	ErrRefCycle             = "E127" // refs form a cycle

	WarnRegionInverted  = "W130" // bottom_left is not below-left of top_right
	WarnUnusedParameter = "W131" // parameter has no meaning for the kind
	WarnRegionEscapes   = "W132" // nested region reaches outside its parent
)

// Severity levels for ValidationError.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a schema validation finding.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Line     int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding is advisory only.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

// Validate validates compiled IR against schema rules.
// Returns all findings (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ConstraintSpec:
		return validateConstraintSpec(spec)
	case ir.ConstraintSpec:
		return validateConstraintSpec(&spec)
	default:
		return []ValidationError{{
			Field:    "type",
			Message:  fmt.Sprintf("unsupported IR type: %T", v),
			Code:     ErrUnsupportedIRType,
			Severity: SeverityError,
		}}
	}
}

func validateConstraintSpec(spec *ir.ConstraintSpec) []ValidationError {
	return validateNode(&spec.Root, spec.Name)
}

// kindParams lists the parameters each kind requires.
var kindParams = map[string][]string{
	ir.KindMaxVelocity:             {"max_velocity"},
	ir.KindCentripetalAcceleration: {"max_centripetal_acceleration"},
	ir.KindAccelerationLimit:       {"min_acceleration", "max_acceleration"},
	ir.KindRectangularRegion:       {"bottom_left", "top_right", "inner"},
	ir.KindRef:                     {"ref"},
}

func validateNode(n *ir.Node, path string) []ValidationError {
	var errs []ValidationError

	required, ok := kindParams[n.Kind]
	if !ok {
		msg := fmt.Sprintf("unknown kind %q", n.Kind)
		if s := suggestKind(n.Kind); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return append(errs, ValidationError{
			Field:    path + ".kind",
			Message:  msg,
			Code:     ErrKindUnknown,
			Severity: SeverityError,
		})
	}

	present := setParams(n)
	for _, p := range required {
		if present[p] {
			continue
		}
		code := ErrParameterMissing
		switch p {
		case "inner":
			code = ErrRegionMissingInner
		case "ref":
			code = ErrInvalidRef
		}
		errs = append(errs, ValidationError{
			Field:    path + "." + p,
			Message:  fmt.Sprintf("%s requires %s", n.Kind, p),
			Code:     code,
			Severity: SeverityError,
		})
	}
	for _, p := range sortedParams(present) {
		if !contains(required, p) {
			errs = append(errs, ValidationError{
				Field:    path + "." + p,
				Message:  fmt.Sprintf("%s is ignored by %s", p, n.Kind),
				Code:     WarnUnusedParameter,
				Severity: SeverityWarning,
			})
		}
	}

	switch n.Kind {
	case ir.KindMaxVelocity:
		errs = append(errs, checkLimit(n.MaxVelocity, path+".max_velocity")...)
	case ir.KindCentripetalAcceleration:
		errs = append(errs, checkLimit(n.MaxCentripetalAcceleration, path+".max_centripetal_acceleration")...)
	case ir.KindAccelerationLimit:
		errs = append(errs, checkFinite(n.MinAcceleration, path+".min_acceleration")...)
		errs = append(errs, checkFinite(n.MaxAcceleration, path+".max_acceleration")...)
		if n.MinAcceleration != nil && n.MaxAcceleration != nil && *n.MinAcceleration > *n.MaxAcceleration {
			errs = append(errs, ValidationError{
				Field:    path,
				Message:  fmt.Sprintf("min_acceleration %g exceeds max_acceleration %g", *n.MinAcceleration, *n.MaxAcceleration),
				Code:     ErrAccelerationInverted,
				Severity: SeverityError,
			})
		}
	case ir.KindRectangularRegion:
		rect, ok := nodeRect(n)
		if ok && rect.Inverted() {
			errs = append(errs, ValidationError{
				Field:    path,
				Message:  fmt.Sprintf("region corners are inverted; %s contains no poses", rect),
				Code:     WarnRegionInverted,
				Severity: SeverityWarning,
			})
		}
		// Only the part of a nested region inside its parent can ever apply.
		inner, innerOK := nodeRect(n.Inner)
		if ok && innerOK && !rect.Inverted() && !inner.Inverted() && !rect.Encloses(inner) {
			errs = append(errs, ValidationError{
				Field:    path + ".inner",
				Message:  fmt.Sprintf("%s reaches outside the enclosing %s; that part is never constrained", inner, rect),
				Code:     WarnRegionEscapes,
				Severity: SeverityWarning,
			})
		}
	}

	if n.Inner != nil {
		errs = append(errs, validateNode(n.Inner, path+".inner")...)
	}

	return errs
}

// nodeRect returns the rectangle of a region node with both corners set.
func nodeRect(n *ir.Node) (geometry.Rectangle, bool) {
	if n == nil || n.Kind != ir.KindRectangularRegion || n.BottomLeft == nil || n.TopRight == nil {
		return geometry.Rectangle{}, false
	}
	return geometry.NewRectangle(
		geometry.NewTranslation2d(n.BottomLeft.X, n.BottomLeft.Y),
		geometry.NewTranslation2d(n.TopRight.X, n.TopRight.Y),
	), true
}

// setParams reports which parameters are present on n.
func setParams(n *ir.Node) map[string]bool {
	return map[string]bool{
		"max_velocity":                 n.MaxVelocity != nil,
		"max_centripetal_acceleration": n.MaxCentripetalAcceleration != nil,
		"min_acceleration":             n.MinAcceleration != nil,
		"max_acceleration":             n.MaxAcceleration != nil,
		"bottom_left":                  n.BottomLeft != nil,
		"top_right":                    n.TopRight != nil,
		"inner":                        n.Inner != nil,
		"ref":                          n.Ref != "",
	}
}

// paramOrder is the declaration order used when reporting parameters.
var paramOrder = []string{
	"max_velocity",
	"max_centripetal_acceleration",
	"min_acceleration",
	"max_acceleration",
	"bottom_left",
	"top_right",
	"inner",
	"ref",
}

func sortedParams(present map[string]bool) []string {
	var out []string
	for _, p := range paramOrder {
		if present[p] {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func checkLimit(f *float64, field string) []ValidationError {
	if f == nil {
		return nil
	}
	if errs := checkFinite(f, field); len(errs) > 0 {
		return errs
	}
	if *f < 0 {
		return []ValidationError{{
			Field:    field,
			Message:  fmt.Sprintf("limit must be non-negative, got %g", *f),
			Code:     ErrInvalidParameter,
			Severity: SeverityError,
		}}
	}
	return nil
}

func checkFinite(f *float64, field string) []ValidationError {
	if f == nil || !(math.IsNaN(*f) || math.IsInf(*f, 0)) {
		return nil
	}
	return []ValidationError{{
		Field:    field,
		Message:  fmt.Sprintf("value must be finite, got %g", *f),
		Code:     ErrInvalidParameter,
		Severity: SeverityError,
	}}
}

// suggestKind returns the closest valid kind, or "" if nothing is close.
func suggestKind(kind string) string {
	best, bestDist := "", math.MaxInt
	for _, k := range ir.ValidKinds {
		d := levenshtein.ComputeDistance(strings.ToLower(kind), k)
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist > max(2, len(best)/3) {
		return ""
	}
	return best
}

// ValidateAll validates every spec and the ref graph between them.
func ValidateAll(specs []ir.ConstraintSpec) []ValidationError {
	var errs []ValidationError
	for i := range specs {
		errs = append(errs, Validate(&specs[i])...)
	}
	return append(errs, AnalyzeRefs(specs)...)
}
