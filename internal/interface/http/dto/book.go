package dto

// 图书HTTP DTO
// 设计说明:
// 1. AddBook是JSON请求:除了category_id还要携带category_name,
//    服务端校验两者指向同一个分类(防止前端下拉框与ID不同步)
// 2. UpdateBook是multipart表单:字段全量替换,封面文件可选
// 3. category_id用int而不是uint:负数ID是合法输入,由领域校验拒绝

// AddBookRequest 创建图书请求
type AddBookRequest struct {
	Name             string `json:"name" example:"Dune"`
	Author           string `json:"author" example:"Frank Herbert"`
	CategoryID       int    `json:"category_id" example:"1"`
	CategoryName     string `json:"category_name" example:"Fiction"`
	IsBookOfTheMonth bool   `json:"is_book_of_the_month" example:"false"`
}

// UpdateBookRequest 更新图书请求(multipart表单,封面文件单独取)
type UpdateBookRequest struct {
	Name             string `form:"name" example:"Dune"`
	Author           string `form:"author" example:"Frank Herbert"`
	CategoryID       int    `form:"category_id" example:"1"`
	IsBookOfTheMonth bool   `form:"is_book_of_the_month" example:"true"`
}
