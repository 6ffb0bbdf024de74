package render

// RenderOptions carry per-request data that is not part of the form state.
type RenderOptions struct {
	// Action is the URL the step form posts to.
	Action string
	// ContactURL backs the always-available contact link. Blank hides it.
	ContactURL string
	// Hidden inputs emitted inside the form, sorted by name.
	Hidden []HiddenField
	// Notices are form-level messages shown above the fields, such as a stale
	// submission warning.
	Notices []string
	// ThemeVariant overrides the renderer's default theme variant.
	ThemeVariant string
}
