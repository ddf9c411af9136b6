package validate

// Status represents the outcome of a report item.
type Status int

const (
	StatusSuccess Status = iota
	StatusWarning
	StatusPending
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusPending:
		return "pending"
	default:
		return "error"
	}
}

// Item represents a single field outcome in a report.
type Item struct {
	Name    string
	Status  Status
	Details string
}

// Report captures outcomes for a one-shot check of several fields.
type Report struct {
	Items    []Item
	Errors   []string
	Warnings []string
	Pending  []string
}

// AddItem appends an item with status and optional details.
func (r *Report) AddItem(status Status, name, details string) {
	r.Items = append(r.Items, Item{
		Name:    name,
		Status:  status,
		Details: details,
	})
}

// AddError records an error message.
func (r *Report) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a warning message.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddPending records a pending message.
func (r *Report) AddPending(msg string) {
	r.Pending = append(r.Pending, msg)
}

// AddResult files a field verdict under name. Empty invalid input is pending,
// any other failure is an error.
func (r *Report) AddResult(name string, res Result[string]) {
	switch {
	case res.Valid:
		r.AddItem(StatusSuccess, name, res.Data)
	case res.Reason == "":
		r.AddPending(name + ": no value")
		r.AddItem(StatusPending, name, "no value")
	default:
		r.AddError(name + ": " + res.Reason)
		r.AddItem(StatusError, name, res.Reason)
	}
}

// OK reports whether the report holds no errors and nothing pending.
func (r *Report) OK() bool {
	return len(r.Errors) == 0 && len(r.Pending) == 0
}
