package dto

// 评论人HTTP DTO

// AddReviewerRequest 创建评论人请求
type AddReviewerRequest struct {
	Name  string `json:"name" example:"Jane Smith"`
	Email string `json:"email" example:"jane@example.com"`
}

// UpdateReviewerRequest 更新评论人请求
type UpdateReviewerRequest struct {
	Name  string `json:"name" example:"Jane Smith"`
	Email string `json:"email" example:"jane.smith@example.com"`
}
