package constraints

// defaultThresholds is the built-in upper-body table (degrees),
// phase-dependent. Loaded when no external table is configured.
var defaultThresholds = rawTable{
	"shoulder_flexion": {
		"rest":       {Safe: 30, Caution: 60, Stop: 120},
		"initiation": {Safe: 45, Caution: 80, Stop: 120},
		"active":     {Safe: 90, Caution: 110, Stop: 130},
		"transition": {Safe: 60, Caution: 90, Stop: 120},
		"completion": {Safe: 30, Caution: 45, Stop: 60},
	},
	"shoulder_abduction": {
		"rest":       {Safe: 20, Caution: 45, Stop: 90},
		"initiation": {Safe: 45, Caution: 90, Stop: 150},
		"active":     {Safe: 90, Caution: 120, Stop: 160},
		"transition": {Safe: 60, Caution: 90, Stop: 120},
		"completion": {Safe: 20, Caution: 40, Stop: 60},
	},
	"shoulder_extension": {
		"rest":       {Safe: 10, Caution: 20, Stop: 45},
		"initiation": {Safe: 15, Caution: 30, Stop: 50},
		"active":     {Safe: 30, Caution: 45, Stop: 60},
		"transition": {Safe: 20, Caution: 35, Stop: 50},
		"completion": {Safe: 10, Caution: 20, Stop: 30},
	},
	"elbow_flexion": {
		"rest":       {Safe: 30, Caution: 60, Stop: 120},
		"initiation": {Safe: 45, Caution: 90, Stop: 140},
		"active":     {Safe: 90, Caution: 120, Stop: 150},
		"transition": {Safe: 60, Caution: 90, Stop: 120},
		"completion": {Safe: 30, Caution: 45, Stop: 60},
	},
	"elbow_extension": {
		"rest":       {Safe: 5, Caution: 8, Stop: 10},
		"initiation": {Safe: 5, Caution: 8, Stop: 10},
		"active":     {Safe: 8, Caution: 10, Stop: 15},
		"transition": {Safe: 5, Caution: 8, Stop: 10},
		"completion": {Safe: 3, Caution: 5, Stop: 8},
	},
	"wrist_flexion": {
		"rest":       {Safe: 20, Caution: 40, Stop: 70},
		"initiation": {Safe: 30, Caution: 50, Stop: 80},
		"active":     {Safe: 50, Caution: 65, Stop: 85},
		"transition": {Safe: 30, Caution: 50, Stop: 70},
		"completion": {Safe: 15, Caution: 30, Stop: 50},
	},
	"wrist_extension": {
		"rest":       {Safe: 15, Caution: 35, Stop: 60},
		"initiation": {Safe: 25, Caution: 45, Stop: 70},
		"active":     {Safe: 45, Caution: 60, Stop: 75},
		"transition": {Safe: 30, Caution: 45, Stop: 60},
		"completion": {Safe: 15, Caution: 25, Stop: 40},
	},
}

// DefaultTable builds the built-in threshold table.
func DefaultTable() *Table {
	t := NewTable()
	// built-in values satisfy the ordering invariant by construction
	if err := t.merge(defaultThresholds); err != nil {
		panic("constraints: invalid built-in thresholds: " + err.Error())
	}
	return t
}
