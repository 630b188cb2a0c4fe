package types

const (
	MinImageSteps     = 4
	MaxImageSteps     = 8
	DefaultImageSteps = 4
)

type GenerateImageArgs struct {
	Prompt *string `json:"prompt" validate:"required"`
	Steps  int     `json:"steps" validate:"min=4,max=8"`
}
