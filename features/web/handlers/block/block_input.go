package block

type StartInput struct {
	EntryID string `json:"entry_id" validate:"required"`
	Mode    string `json:"mode" validate:"omitempty,oneof=mute block"`
}

type ModeInput struct {
	Mode string `json:"mode" validate:"required,oneof=mute block"`
}
