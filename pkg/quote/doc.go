// Package quote implements the auto-insurance quote request form: a
// three-step state machine over a flat set of string fields, conditional
// option lists, a postal-code lookup side effect, and the WhatsApp message
// link built on submission.
//
// A Controller owns one session. Renderers read View snapshots and feed user
// input back through SetField, Advance, Retreat, Submit and Contact. The form
// layout, labels and option rules come from a Definition, by default the
// embedded definition.yaml.
//
//	ctrl := quote.NewController(nil,
//		quote.WithLookup(postal.NewClient()),
//		quote.WithNavigator(nav),
//	)
//	ctrl.Seed(r.URL.Query().Get("ref"))
//	_ = ctrl.SetField(quote.FieldName, "Maria Silva")
//	ctrl.Advance()
package quote
