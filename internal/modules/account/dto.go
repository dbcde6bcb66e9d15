package account

type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty" binding:"omitempty,min=2"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
}
