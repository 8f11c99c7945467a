package logging

// Field names shared by every component so log output stays filterable.
const (
	FieldComponent = "component"
	FieldInputFile = "input_file"
	FieldOperation = "operation"
	FieldCount     = "count"
	FieldDropped   = "dropped"
	FieldRow       = "row"
	FieldReason    = "reason"
	FieldCategory  = "category"
	FieldView      = "view"
	FieldSession   = "session_id"
	FieldService   = "service"
	FieldDuration  = "duration_ms"
	FieldMSE       = "mse"
)
