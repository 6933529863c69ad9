package gonest

import (
	"context"

	"github.com/reoring/gonest/i18n"
	eng "github.com/reoring/gonest/internal/engine"
)

// Validate checks local rules and propagates nested child invalidity. A
// nested-single child contributes one generic "invalid" issue keyed to the
// association name when its own Validate fails; a nested-array collection is
// validated in full (no short-circuit) and contributes one such issue when
// any element fails. Child issues are not flattened into the parent; each
// child remains inspectable via its own Validate.
func (m *Model) Validate(ctx context.Context) error {
	var iss Issues
	for _, a := range m.typ.attrs {
		v := m.values[a.Name]
		if a.Required && eng.Blank(v) {
			iss = AppendIssues(iss, Issue{
				Path:    "/" + a.Name,
				Code:    CodeRequired,
				Message: i18n.T(CodeRequired, nil),
				Params:  map[string]any{"attribute": a.Name},
			})
		}
		switch cv := v.(type) {
		case *Model:
			if cv != nil && cv.Validate(ctx) != nil {
				iss = AppendIssues(iss, invalidChildIssue(a.Name))
			}
		case []*Model:
			bad := false
			for _, cm := range cv {
				if cm != nil && cm.Validate(ctx) != nil {
					bad = true
				}
			}
			if bad {
				iss = AppendIssues(iss, invalidChildIssue(a.Name))
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// IsValid reports whether Validate succeeds.
func (m *Model) IsValid(ctx context.Context) bool { return m.Validate(ctx) == nil }

// Errors returns the structured issue collection, empty when valid.
func (m *Model) Errors(ctx context.Context) Issues {
	iss, _ := AsIssues(m.Validate(ctx))
	return iss
}

func invalidChildIssue(assoc string) Issue {
	return Issue{
		Path:    "/" + assoc,
		Code:    CodeInvalid,
		Message: i18n.T(CodeInvalid, nil),
		Params:  map[string]any{"association": assoc},
	}
}
