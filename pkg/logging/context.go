package logging

import "log/slog"

// WithComponent tags records with the emitting component.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithTable tags records with the table a cursor reads.
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithMode tags records with a component and the join mode it runs in.
func WithMode(component, mode string) *slog.Logger {
	return GetLogger().With("component", component, "mode", mode)
}

// WithTask tags records with a split task id and the key range it covers.
func WithTask(taskID string, rng string) *slog.Logger {
	return GetLogger().With("task_id", taskID, "range", rng)
}

// WithError tags records with err's message.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
