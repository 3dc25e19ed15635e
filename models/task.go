package models

// Task is a to-do item owned by exactly one user. Description is nullable
// and serializes as JSON null when unset.
type Task struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerID     int     `json:"owner_id"`
}

// TaskPatch carries a partial update. Nil fields leave the stored column
// untouched; a JSON null in the request body decodes to nil and is treated
// the same as an absent field.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
