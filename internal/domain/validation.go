package domain

// ValidationErrors collects user-facing messages recorded against an entity.
type ValidationErrors []string

// Add appends a message to the base error list.
func (v *ValidationErrors) Add(message string) {
	*v = append(*v, message)
}

func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

func (v ValidationErrors) Last() string {
	if len(v) == 0 {
		return ""
	}
	return v[len(v)-1]
}
