// Package validator accumulates request validation failures as a flat list
// of human-readable messages; handlers return the list to the client in a
// 422 envelope.
package validator

// Validator is embedded in a handler's input struct (tagged `json:"-"` so it
// never round-trips through the request body).
type Validator struct {
	Errors []string `json:",omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

func (v *Validator) AddError(message string) {
	if v.Errors == nil {
		v.Errors = []string{}
	}

	v.Errors = append(v.Errors, message)
}

// Check records message when ok is false. Checks are cumulative; a request
// reports every failed rule at once rather than the first.
func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}
