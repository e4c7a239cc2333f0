package sort

type SortInput struct {
	URL       string `json:"url"`
	Strategy  string `json:"strategy" validate:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=desc asc"`
}
