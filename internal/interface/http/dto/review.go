package dto

// 书评HTTP DTO

// AddReviewRequest 创建书评请求
// book_id/reviewer_id用int:负数是合法输入,由领域校验拒绝
type AddReviewRequest struct {
	Text       string `json:"text" example:"A masterpiece of science fiction."`
	BookID     int    `json:"book_id" example:"1"`
	ReviewerID int    `json:"reviewer_id" example:"1"`
}

// UpdateReviewRequest 更新书评请求(只有内容可变)
type UpdateReviewRequest struct {
	Text string `json:"text" example:"Updated review text."`
}
