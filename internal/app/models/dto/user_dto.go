package dto

// UserListRequest represents user paging parameters
type UserListRequest struct {
	Role     string `form:"role" binding:"omitempty,oneof=applicant admin super_admin"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// UpdateUserRoleRequest changes a user's role and EB position
type UpdateUserRoleRequest struct {
	Role     string `json:"role" binding:"required,oneof=applicant admin super_admin"`
	Position string `json:"position" binding:"max=64"`
}

// UpsertEBProfileRequest creates or replaces the profile for an EB position
type UpsertEBProfileRequest struct {
	Position    string `json:"position" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	MeetingLink string `json:"meetingLink" binding:"omitempty,url"`
	ImageRef    string `json:"imageRef" binding:"max=512"`
}

// EBProfileByPositionRequest looks a profile up by EB role ID
type EBProfileByPositionRequest struct {
	Position string `form:"position" binding:"required,max=64"`
}
