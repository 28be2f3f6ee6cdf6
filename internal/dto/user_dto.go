package dto

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	Avatar      string `json:"avatar" validate:"omitempty,url"`
	Bio         string `json:"bio" validate:"omitempty,max=500"`
}
